package lib

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const hexDigits = "0123456789abcdef"

// ErrInvalidShape is returned when a packed shape is not "<length>.<hex>".
var ErrInvalidShape = errors.New("invalid packed tree shape")

// EncodeShape serializes the split pattern of a tree in pre-order: an
// internal node is a 1 followed by its two halves, a leaf is a 0.
func EncodeShape(root *Node) BitStr {
	var bits BitStr
	walk(root, func(n *Node) bool {
		bits.Append(!n.IsLeaf())
		return true
	})
	return bits
}

// DecodeShape builds one subtree from the head of bits with nodes allocated
// by t, and returns the bits it did not consume. Running out of bits ends
// the current branch with a leaf.
func (t *Tree) DecodeShape(bits BitStr) (*Node, BitStr) {
	var pos uint
	var decode func() *Node
	decode = func() *Node {
		n := t.CreateLeaf()
		if pos >= bits.BitLen {
			return n
		}
		pos++
		if bits.Bit(pos - 1) {
			left := decode()
			right := decode()
			n.children = &[2]*Node{left, right}
		}
		return n
	}
	root := decode()
	return root, bits.Substr(pos, bits.BitLen-pos)
}

// PackShape renders bits as "<bit length>.<hex>", four bits per hex digit
// with the earliest bit of each group in the least significant position.
func PackShape(bits BitStr) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(bits.BitLen), 10))
	b.WriteByte('.')
	var nibble byte
	for i := uint(0); i < bits.BitLen; i++ {
		if bits.Bit(i) {
			nibble |= 1 << (i % 4)
		}
		if i%4 == 3 {
			b.WriteByte(hexDigits[nibble])
			nibble = 0
		}
	}
	if bits.BitLen%4 != 0 {
		b.WriteByte(hexDigits[nibble])
	}
	return b.String()
}

// UnpackShape is the inverse of PackShape. Padding bits of the last hex
// digit are dropped.
func UnpackShape(s string) (BitStr, error) {
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return BitStr{}, errors.WithMessage(ErrInvalidShape, s)
	}
	lenText, hexText := s[:dot], s[dot+1:]
	for _, c := range lenText {
		if c < '0' || c > '9' {
			return BitStr{}, errors.WithMessage(ErrInvalidShape, s)
		}
	}
	n, err := strconv.ParseUint(lenText, 10, 32)
	if err != nil {
		return BitStr{}, errors.WithMessage(ErrInvalidShape, s)
	}
	if n > uint64(len(hexText))*4 {
		return BitStr{}, errors.Wrapf(ErrInvalidShape,
			"%d bits announced but only %d hex digits given", n, len(hexText))
	}

	var bits BitStr
	for _, c := range hexText {
		nibble, err := strconv.ParseUint(string(c), 16, 8)
		if err != nil {
			return BitStr{}, errors.WithMessage(ErrInvalidShape, s)
		}
		for j := uint(0); j < 4 && uint64(bits.BitLen) < n; j++ {
			bits.Append(nibble&(1<<j) != 0)
		}
	}
	return bits, nil
}
