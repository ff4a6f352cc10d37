package lib

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const bitStrWordSize = 32

// BitStr is a string of bits packed most-significant-first into 32-bit
// words. Bits of the last word past BitLen are undefined.
type BitStr struct {
	Words  []uint32
	BitLen uint
}

// ParseBitStr parses a string made of '0' and '1' characters.
func ParseBitStr(s string) (BitStr, error) {
	var str BitStr
	for i, c := range s {
		switch c {
		case '0':
			str.Append(false)
		case '1':
			str.Append(true)
		default:
			return BitStr{}, errors.Errorf(
				"unexpected character %q at position %d of bit string", c, i)
		}
	}
	return str, nil
}

// Append adds one bit at the end of the string.
func (s *BitStr) Append(bit bool) {
	i := s.BitLen
	if i/bitStrWordSize >= uint(len(s.Words)) {
		s.Words = append(s.Words, 0)
	}
	w := &s.Words[i/bitStrWordSize]
	mask := uint32(1) << (bitStrWordSize - (i % bitStrWordSize) - 1)
	if bit {
		*w |= mask
	} else {
		*w &^= mask
	}
	s.BitLen++
}

// Bit returns the i-th bit, counting from the start of the string.
func (s BitStr) Bit(i uint) bool {
	w := s.Words[i/bitStrWordSize]
	return 0x1 == ((w >> (bitStrWordSize - (i % bitStrWordSize) - 1)) & 0x1)
}

// Count returns the number of set bits.
func (s BitStr) Count() uint {
	var n uint
	for i := uint(0); i < s.BitLen; i++ {
		if s.Bit(i) {
			n++
		}
	}
	return n
}

// Equal reports whether both strings hold the same bits.
func (s BitStr) Equal(o BitStr) bool {
	if s.BitLen != o.BitLen {
		return false
	}
	n := s.BitLen / bitStrWordSize
	m := s.BitLen % bitStrWordSize
	for i := uint(0); i < n; i++ {
		if s.Words[i] != o.Words[i] {
			return false
		}
	}
	if m != 0 {
		return (s.Words[n]^o.Words[n])>>(bitStrWordSize-m) == 0
	}
	return true
}

// Substr returns n bits starting at from.
func (s BitStr) Substr(from, n uint) BitStr {
	if n == 0 {
		return BitStr{}
	}

	nw := (n-1)/bitStrWordSize + 1
	result := BitStr{make([]uint32, nw), n}
	start := from / bitStrWordSize
	shift := from % bitStrWordSize

	if shift == 0 {
		copy(result.Words, s.Words[start:start+nw])
	} else {
		var suffix uint32
		if start+nw < uint(len(s.Words)) {
			suffix = s.Words[start+nw] >> (bitStrWordSize - shift)
		}
		for i := uint(1); i <= nw; i++ {
			curr := s.Words[start+nw-i]
			result.Words[nw-i] = (curr << shift) | suffix
			suffix = curr >> (bitStrWordSize - shift)
		}
	}
	return result
}

func (s BitStr) String() string {
	var b strings.Builder
	b.Grow(int(s.BitLen))
	for i := uint(0); i < s.BitLen; i++ {
		if s.Bit(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Format prints the bit length followed by the bits, "%x" prints the
// packed words instead.
func (s BitStr) Format(f fmt.State, c rune) {
	fmt.Fprintf(f, "[%d]", s.BitLen)
	if s.BitLen == 0 {
		return
	}
	if c == 'x' {
		n := (s.BitLen-1)/bitStrWordSize + 1
		for _, w := range s.Words[:n] {
			fmt.Fprintf(f, "%08x", w)
		}
		return
	}
	_, _ = f.Write([]byte(s.String()))
}
