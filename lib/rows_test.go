package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateOf(t *testing.T, network string, mask int, shape string) *State {
	addr, err := ParseAddr(network)
	require.NoError(t, err)
	s := NewState(addr, mask)
	s.Tree = buildTree(t, shape)
	return s
}

func TestBuildRowsSingleDivide(t *testing.T) {
	s := stateOf(t, "192.168.1.0", 24, "100")
	rows, joinSpan := BuildRows(s)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, joinSpan)

	root, left, right := s.Tree.Root, s.Tree.Root.Left(), s.Tree.Root.Right()
	assert.Equal(t, Row{
		NodeID:       left.ID,
		Network:      0xc0a80100,
		Mask:         25,
		Subnet:       "192.168.1.0/25",
		Netmask:      "255.255.255.128",
		AddressRange: "192.168.1.0 - 192.168.1.127",
		UsableRange:  "192.168.1.1 - 192.168.1.126",
		Hosts:        126,
		Divisible:    true,
		JoinCells: []JoinCell{
			{NodeID: left.ID, Mask: 25, RowSpan: 1, ColSpan: 1},
			{NodeID: root.ID, Mask: 24, RowSpan: 2, ColSpan: 1, Joinable: true},
		},
	}, rows[0])
	assert.Equal(t, "192.168.1.128/25", rows[1].Subnet)
	assert.Equal(t, "192.168.1.128 - 192.168.1.255", rows[1].AddressRange)
	assert.Equal(t, []JoinCell{{NodeID: right.ID, Mask: 25, RowSpan: 1, ColSpan: 1}},
		rows[1].JoinCells)
}

func TestBuildRowsUndivided(t *testing.T) {
	s := stateOf(t, "10.0.0.0", 8, "0")
	s.Tree.Root.Remark = "everything"
	rows, joinSpan := BuildRows(s)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, joinSpan)
	assert.Equal(t, "10.0.0.1 - 10.255.255.254", rows[0].UsableRange)
	assert.Equal(t, int64(16777214), rows[0].Hosts)
	assert.Equal(t, "everything", rows[0].Remark)
	assert.Equal(t, []JoinCell{{NodeID: s.Tree.Root.ID, Mask: 8, RowSpan: 1, ColSpan: 1}},
		rows[0].JoinCells)
}

func TestBuildRowsJoinCells(t *testing.T) {
	// root -> (A -> (a1, A2 -> (a21, a22)), b)
	s := stateOf(t, "10.0.0.0", 24, "1101000")
	rows, joinSpan := BuildRows(s)
	require.Len(t, rows, 4)
	assert.Equal(t, 4, joinSpan)

	subnets := []string{}
	cellMasks := [][]int{}
	for _, r := range rows {
		subnets = append(subnets, r.Subnet)
		var masks []int
		for _, c := range r.JoinCells {
			masks = append(masks, c.Mask)
		}
		cellMasks = append(cellMasks, masks)
	}
	assert.Equal(t, []string{
		"10.0.0.0/26", "10.0.0.64/27", "10.0.0.96/27", "10.0.0.128/25"}, subnets)
	assert.Equal(t, [][]int{{26, 25, 24}, {27, 26}, {27}, {25}}, cellMasks)

	// the first row opens the root and A cells
	assert.Equal(t, 4, rows[0].JoinCells[2].RowSpan)
	assert.Equal(t, 3, rows[0].JoinCells[1].RowSpan)
	// column spans follow the DepthField values: depth 4-1-1 at a1
	assert.Equal(t, 2, rows[0].JoinCells[0].ColSpan)
	assert.Equal(t, 1, rows[0].JoinCells[1].ColSpan)
	assert.Equal(t, 1, rows[1].JoinCells[0].ColSpan)
	assert.Equal(t, 3, rows[3].JoinCells[0].ColSpan)
	assert.False(t, rows[3].JoinCells[0].Joinable)
}

func TestBuildRowsSmallSubnets(t *testing.T) {
	s := stateOf(t, "10.0.0.0", 31, "100")
	rows, _ := BuildRows(s)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 32, r.Mask)
		assert.Equal(t, NotApplicable, r.UsableRange)
		assert.Zero(t, r.Hosts)
		assert.False(t, r.Divisible)
	}
	assert.Equal(t, "10.0.0.1", rows[1].AddressRange)

	s = stateOf(t, "10.0.0.0", 31, "0")
	rows, _ = BuildRows(s)
	assert.Equal(t, "10.0.0.0 - 10.0.0.1", rows[0].AddressRange)
	assert.Equal(t, NotApplicable, rows[0].UsableRange)
	assert.True(t, rows[0].Divisible)
}

func TestBuildRowsReserve(t *testing.T) {
	s := stateOf(t, "10.0.0.0", 30, "0")
	cases := []struct {
		front, end int
		usable     string
		hosts      int64
	}{
		{1, 1, "10.0.0.1 - 10.0.0.2", 2},
		{2, 1, "10.0.0.2", 1},
		{3, 3, NotApplicable, 0},
		{4, 1, NotApplicable, 0},
	}
	for _, c := range cases {
		s.ReserveFront, s.ReserveEnd = c.front, c.end
		rows, _ := BuildRows(s)
		assert.Equal(t, c.usable, rows[0].UsableRange, "rf=%d re=%d", c.front, c.end)
		assert.Equal(t, c.hosts, rows[0].Hosts, "rf=%d re=%d", c.front, c.end)
	}
}

func TestLocateNode(t *testing.T) {
	s := stateOf(t, "10.0.0.0", 24, "1101000")
	a2 := s.Tree.Root.Left().Right()
	n, addr, mask := locateNode(s, a2.ID)
	assert.Same(t, a2, n)
	assert.Equal(t, "10.0.0.64", addr.String())
	assert.Equal(t, 26, mask)

	n, _, _ = locateNode(s, -1)
	assert.Nil(t, n)
}
