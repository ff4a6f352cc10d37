package lib

import (
	"strconv"
)

// NotApplicable is shown for ranges that do not exist.
const NotApplicable = "N/A"

// Row is the rendering data of one leaf subnet.
type Row struct {
	NodeID       int        `json:"nodeId"`
	Network      Addr       `json:"-"`
	Mask         int        `json:"mask"`
	Subnet       string     `json:"subnet"`
	Netmask      string     `json:"netmask"`
	AddressRange string     `json:"range"`
	UsableRange  string     `json:"useable"`
	Hosts        int64      `json:"hosts"`
	Remark       string     `json:"remark"`
	Divisible    bool       `json:"divisible"`
	JoinCells    []JoinCell `json:"joinCells"`
}

// JoinCell is one mask label in the join area of a row. A cell spans the
// rows of every leaf under its node; the leaf's own cell comes first and is
// the only one that cannot be joined.
type JoinCell struct {
	NodeID   int  `json:"nodeId"`
	Mask     int  `json:"mask"`
	RowSpan  int  `json:"rowSpan"`
	ColSpan  int  `json:"colSpan"`
	Joinable bool `json:"joinable"`
}

type joinLabel struct {
	mask int
	node *Node
}

// BuildRows recomputes the tree caches and lays out one row per leaf. It
// also returns the column span of the join header.
func BuildRows(s *State) ([]Row, int) {
	s.Tree.Recompute()
	root := s.Tree.Root
	rows := make([]Row, 0, root.LeafCount)
	var visit func(n *Node, addr Addr, mask int, labels []joinLabel, depth int)
	visit = func(n *Node, addr Addr, mask int, labels []joinLabel, depth int) {
		if !n.IsLeaf() {
			left, right := n.children[0], n.children[1]
			leftLabels := make([]joinLabel, len(labels), len(labels)+1)
			copy(leftLabels, labels)
			leftLabels = append(leftLabels, joinLabel{mask + 1, left})
			visit(left, addr, mask+1, leftLabels, depth-1)
			visit(right, addr+Addr(AddrCount(mask+1)), mask+1,
				[]joinLabel{{mask + 1, right}}, depth-1)
			return
		}
		row := leafRow(s, n, addr, mask)
		colSpan := depth - n.DepthField
		for i := len(labels) - 1; i >= 0; i-- {
			row.JoinCells = append(row.JoinCells, JoinCell{
				NodeID:   labels[i].node.ID,
				Mask:     labels[i].mask,
				RowSpan:  atLeastOne(labels[i].node.LeafCount),
				ColSpan:  atLeastOne(colSpan),
				Joinable: i != len(labels)-1,
			})
			colSpan = 1
		}
		rows = append(rows, row)
	}
	visit(root, s.Network, s.Mask, []joinLabel{{s.Mask, root}}, root.DepthField)
	return rows, atLeastOne(root.DepthField)
}

func leafRow(s *State, n *Node, addr Addr, mask int) Row {
	last := LastAddr(addr, mask)
	row := Row{
		NodeID:    n.ID,
		Network:   addr,
		Mask:      mask,
		Subnet:    addr.String() + "/" + strconv.Itoa(mask),
		Netmask:   Netmask(mask).String(),
		Remark:    n.Remark,
		Divisible: mask < MaxMask,
	}

	switch mask {
	case MaxMask:
		row.AddressRange = addr.String()
		row.UsableRange = NotApplicable
	case MaxMask - 1:
		row.AddressRange = addr.String() + " - " + last.String()
		row.UsableRange = NotApplicable
	default:
		row.AddressRange = addr.String() + " - " + last.String()
		first := int64(addr) + int64(s.ReserveFront)
		end := int64(last) - int64(s.ReserveEnd)
		switch {
		case first > end:
			row.UsableRange = NotApplicable
		case first == end:
			row.UsableRange = Addr(first).String()
			row.Hosts = 1
		default:
			row.UsableRange = Addr(first).String() + " - " + Addr(end).String()
			row.Hosts = end - first + 1
		}
	}
	return row
}

// locateNode finds a node by id and returns the subnet it covers.
func locateNode(s *State, id int) (*Node, Addr, int) {
	var find func(n *Node, addr Addr, mask int) (*Node, Addr, int)
	find = func(n *Node, addr Addr, mask int) (*Node, Addr, int) {
		if n.ID == id {
			return n, addr, mask
		}
		if n.IsLeaf() {
			return nil, 0, 0
		}
		if f, a, m := find(n.children[0], addr, mask+1); f != nil {
			return f, a, m
		}
		return find(n.children[1], addr+Addr(AddrCount(mask+1)), mask+1)
	}
	return find(s.Tree.Root, s.Network, s.Mask)
}

func atLeastOne(n int) int {
	if n > 1 {
		return n
	}
	return 1
}
