package lib

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultReserve is the number of addresses reserved at each end of a
// subnet when nothing else is given.
const DefaultReserve = 1

// State is the whole shareable state of a partition.
type State struct {
	Network      Addr
	Mask         int
	Tree         *Tree
	Columns      Columns
	ReserveFront int
	ReserveEnd   int
	Name         string

	// Complete is set when network, mask and division were all present.
	Complete bool
	// Normalized is set when the network address was moved to its mask
	// boundary while decoding.
	Normalized bool
	// Problems lists the malformed fields that were replaced by defaults.
	Problems []error
}

// NewState returns the state of an undivided network with default settings.
func NewState(network Addr, mask int) *State {
	return &State{
		Network:      NetworkAddr(network, mask),
		Mask:         mask,
		Tree:         NewTree(),
		Columns:      AllColumns,
		ReserveFront: DefaultReserve,
		ReserveEnd:   DefaultReserve,
	}
}

// ParseReserve parses a reserve count. Anything that is not a number of at
// least 1 becomes 1.
func ParseReserve(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return DefaultReserve
	}
	return n
}

// EncodeBookmark renders the state as a query string.
func EncodeBookmark(s *State) string {
	var b strings.Builder
	b.WriteString("network=")
	b.WriteString(s.Network.String())
	b.WriteString("&mask=")
	b.WriteString(strconv.Itoa(s.Mask))
	b.WriteString("&division=")
	b.WriteString(PackShape(EncodeShape(s.Tree.Root)))
	b.WriteString("&remarks=")
	b.WriteString(escape(EncodeRemarks(s.Tree.Root), true))
	b.WriteString("&cols=")
	b.WriteString(EncodeColumns(s.Columns))
	b.WriteString("&rf=")
	b.WriteString(strconv.Itoa(s.ReserveFront))
	b.WriteString("&re=")
	b.WriteString(strconv.Itoa(s.ReserveEnd))
	b.WriteString("&name=")
	b.WriteString(EscapeComponent(s.Name))
	return b.String()
}

// BookmarkLink appends the encoded state to base as its query string.
func BookmarkLink(base string, s *State) string {
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return base + "?" + EncodeBookmark(s)
}

// DecodeBookmark parses a query string, with or without the leading '?' or
// the part of a link before it. The fallback state, if any, provides the
// network and mask used when the query has none, and the tree whose id
// allocator builds the decoded nodes. Its root is replaced.
//
// Only a malformed network address or mask is an error. When network, mask
// and division are not all present, the result is an undivided tree.
func DecodeBookmark(query string, fallback *State) (*State, error) {
	if i := strings.IndexByte(query, '?'); i >= 0 {
		query = query[i+1:]
	}
	args, err := url.ParseQuery(query)
	if err != nil {
		return nil, errors.Wrap(err, "malformed bookmark")
	}

	s := &State{
		Columns:      AllColumns,
		ReserveFront: DefaultReserve,
		ReserveEnd:   DefaultReserve,
	}
	network := Addr(0)
	if fallback != nil {
		network, s.Mask, s.Tree = fallback.Network, fallback.Mask, fallback.Tree
	}
	if s.Tree == nil {
		s.Tree = NewTree()
	}
	t := s.Tree
	has := func(key string) bool { return args.Get(key) != "" }
	s.Complete = has("network") && has("mask") && has("division")

	if has("mask") {
		if s.Mask, err = ParseMask(args.Get("mask")); err != nil {
			return nil, err
		}
	}
	if has("network") {
		if network, err = ParseAddr(args.Get("network")); err != nil {
			return nil, err
		}
	}
	s.Network = NetworkAddr(network, s.Mask)
	s.Normalized = s.Network != network

	if v := args.Get("cols"); v != "" {
		if s.Columns, err = DecodeColumns(v); err != nil {
			s.Columns = AllColumns
			s.Problems = append(s.Problems, err)
		}
	}
	if v := args.Get("rf"); v != "" {
		s.ReserveFront = ParseReserve(v)
	}
	if v := args.Get("re"); v != "" {
		s.ReserveEnd = ParseReserve(v)
	}
	s.Name = args.Get("name")

	t.StartOver()
	if !s.Complete {
		return s, nil
	}

	bits, err := UnpackShape(args.Get("division"))
	if err == nil {
		root, _ := t.DecodeShape(bits)
		if h := height(root); h > MaxMask-s.Mask {
			err = errors.Errorf(
				"division is %d levels deep but a /%d only splits %d times",
				h, s.Mask, MaxMask-s.Mask)
		} else {
			t.Root = root
		}
	}
	if err != nil {
		s.Problems = append(s.Problems, err)
	}

	if v, ok := args["remarks"]; ok && v[0] != "" {
		if err = DecodeRemarks(t.Root, v[0]); err != nil {
			s.Problems = append(s.Problems, err)
		}
	}
	return s, nil
}

func height(n *Node) int {
	if n.IsLeaf() {
		return 0
	}
	l, r := height(n.children[0]), height(n.children[1])
	if l > r {
		return l + 1
	}
	return r + 1
}
