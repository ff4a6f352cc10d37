package db

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive(t *testing.T) {
	in := []*Bookmark{
		{Slug: "s1", Name: "office", Query: "network=10.0.0.0&mask=8&division=3.1"},
		{Slug: "s2", Name: "lab", Query: "remarks=a%252Cb%2C&name=Lab%20net"},
	}
	in[0].ID = 42

	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, in))
	out, err := ReadArchive(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.Equal(t, in[i].Slug, out[i].Slug)
		assert.Equal(t, in[i].Name, out[i].Name)
		assert.Equal(t, in[i].Query, out[i].Query)
		assert.Zero(t, out[i].ID)
	}
}

func TestArchiveMalformed(t *testing.T) {
	_, err := ReadArchive(bytes.NewBufferString("definitely not snappy"))
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, nil))
	out, err := ReadArchive(&buf)
	require.NoError(t, err)
	assert.Empty(t, out)
}
