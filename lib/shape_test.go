package lib

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shapes = []string{
	"0", "100", "11000", "10100", "1101000", "10111101001010000",
	"11011110010001110010000", "101101010011001110010010100", "11111111000000000",
}

func TestShapeRoundTrip(t *testing.T) {
	for _, shape := range shapes {
		tree := buildTree(t, shape)
		bits := EncodeShape(tree.Root)
		require.Equal(t, shape, bits.String())
		assert.Equal(t, uint(len(Leaves(tree.Root))), bits.BitLen-bits.Count())

		packed := PackShape(bits)
		unpacked, err := UnpackShape(packed)
		require.NoError(t, err, packed)
		assert.True(t, bits.Equal(unpacked), "%s -> %s -> %s", bits, packed, unpacked)

		other := NewTree()
		root, rest := other.DecodeShape(unpacked)
		assert.Zero(t, rest.BitLen)
		assert.Equal(t, shape, EncodeShape(root).String())
	}
}

func TestDecodeShapeLeftover(t *testing.T) {
	bits, _ := ParseBitStr("10011")
	tree := NewTree()
	root, rest := tree.DecodeShape(bits)
	assert.Equal(t, "100", EncodeShape(root).String())
	assert.Equal(t, "11", rest.String())

	root, rest = tree.DecodeShape(BitStr{})
	assert.True(t, root.IsLeaf())
	assert.Zero(t, rest.BitLen)
}

func TestPackShape(t *testing.T) {
	cases := [][2]string{
		{"0", "1.0"},
		{"100", "3.1"},
		{"1000", "4.1"},
		{"11000", "5.30"},
		{"1101000", "7.b0"},
		{"111100001", "9.f01"},
	}
	for _, c := range cases {
		bits, err := ParseBitStr(c[0])
		require.NoError(t, err)
		assert.Equal(t, c[1], PackShape(bits), c[0])
	}
}

func TestUnpackShape(t *testing.T) {
	bits, err := UnpackShape("3.f")
	require.NoError(t, err)
	assert.Equal(t, "111", bits.String(), "padding bits are dropped")

	bits, err = UnpackShape("5.3F")
	require.NoError(t, err)
	assert.Equal(t, "11001", bits.String())

	for _, s := range []string{"", "3", "3.", ".1", "x.1", "3.g", "-3.1", "9.1", "3.1.1"} {
		_, err := UnpackShape(s)
		assert.Equal(t, ErrInvalidShape, errors.Cause(err), "%q", s)
	}
}
