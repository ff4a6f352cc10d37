package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsRoundTrip(t *testing.T) {
	for v := 0; v < 256; v++ {
		var c Columns
		for i := range c {
			c[i] = v&(1<<uint(i)) != 0
		}
		decoded, err := DecodeColumns(EncodeColumns(c))
		require.NoError(t, err)
		assert.Equal(t, c, decoded)
	}
}

func TestEncodeColumns(t *testing.T) {
	c := AllColumns
	require.NoError(t, c.Set("netmask", false))
	require.NoError(t, c.Set("join", false))
	assert.Equal(t, "be", EncodeColumns(c))
	assert.Equal(t, "ff", AllColumns.String())
	assert.Equal(t, "00", EncodeColumns(Columns{}))
	assert.Equal(t, "80", EncodeColumns(Columns{true}))
	assert.Equal(t, "01", EncodeColumns(Columns{7: true}))
	assert.False(t, c.Visible("netmask"))
	assert.True(t, c.Visible("subnet"))
	assert.False(t, c.Visible("nope"))
	assert.Error(t, c.Set("nope", true))
}

func TestDecodeColumns(t *testing.T) {
	c, err := DecodeColumns("eb") // 11101011
	require.NoError(t, err)
	assert.Equal(t,
		Columns{true, true, true, false, true, false, true, true}, c)
	assert.False(t, c.Visible("useable"))
	assert.False(t, c.Visible("remark"))

	c, err = DecodeColumns("1")
	require.NoError(t, err)
	assert.Equal(t, Columns{7: true}, c)

	for _, s := range []string{"", "zz", "100", "-1"} {
		_, err := DecodeColumns(s)
		assert.Error(t, err, s)
	}
}
