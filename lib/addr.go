package lib

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxMask is the longest IPv4 mask length.
const MaxMask = 32

var (
	// ErrInvalidAddress is returned for text that is not a dotted-decimal
	// IPv4 address.
	ErrInvalidAddress = errors.New("invalid network address")
	// ErrInvalidMask is returned for mask lengths outside 0-32.
	ErrInvalidMask = errors.New("invalid network mask")
)

// Addr is an IPv4 address held as a 32-bit unsigned integer.
type Addr uint32

// ParseAddr parses exactly four dot-separated decimal octets.
func ParseAddr(s string) (Addr, error) {
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return 0, errors.WithMessage(ErrInvalidAddress, s)
	}
	var addr Addr
	for _, g := range groups {
		if len(g) == 0 || len(g) > 3 {
			return 0, errors.WithMessage(ErrInvalidAddress, s)
		}
		for _, c := range g {
			if c < '0' || c > '9' {
				return 0, errors.WithMessage(ErrInvalidAddress, s)
			}
		}
		octet, err := strconv.Atoi(g)
		if err != nil || octet > 255 {
			return 0, errors.WithMessage(ErrInvalidAddress, s)
		}
		addr = addr<<8 | Addr(octet)
	}
	return addr, nil
}

// ParseMask parses a decimal mask length in the range 0-32.
func ParseMask(s string) (int, error) {
	mask, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.WithMessage(ErrInvalidMask, s)
	}
	if err = CheckMask(mask); err != nil {
		return 0, err
	}
	return mask, nil
}

// CheckMask returns ErrInvalidMask if mask is outside 0-32.
func CheckMask(mask int) error {
	if mask < 0 || mask > MaxMask {
		return errors.WithMessage(ErrInvalidMask, "/"+strconv.Itoa(mask))
	}
	return nil
}

func (a Addr) String() string {
	var buf [15]byte
	b := strconv.AppendUint(buf[:0], uint64(a>>24), 10)
	b = append(b, '.')
	b = strconv.AppendUint(b, uint64(a>>16&0xff), 10)
	b = append(b, '.')
	b = strconv.AppendUint(b, uint64(a>>8&0xff), 10)
	b = append(b, '.')
	b = strconv.AppendUint(b, uint64(a&0xff), 10)
	return string(b)
}

// NetIP converts the address into a netip.Addr.
func (a Addr) NetIP() netip.Addr {
	return netip.AddrFrom4([4]byte{
		byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)})
}

// NetworkAddr clears the host bits of addr for the given mask length.
func NetworkAddr(addr Addr, mask int) Addr {
	bits := uint(MaxMask - mask)
	if bits >= MaxMask { // /0
		return 0
	}
	return addr >> bits << bits
}

// AddrCount returns the number of addresses in a subnet of the given mask.
func AddrCount(mask int) uint64 {
	return uint64(1) << uint(MaxMask-mask)
}

// LastAddr returns the highest address of the subnet starting at base.
func LastAddr(base Addr, mask int) Addr {
	return Addr(uint64(base) + AddrCount(mask) - 1)
}

// Netmask returns the dotted netmask of a mask length.
func Netmask(mask int) Addr {
	return NetworkAddr(0xffffffff, mask)
}
