package lib

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCalculator(t *testing.T, confirm Confirmer) *Calculator {
	addr, err := ParseAddr("192.168.1.0")
	require.NoError(t, err)
	return NewCalculator(
		zap.NewNop().Sugar(), NewState(addr, 24), "index.html", confirm)
}

func TestCalculatorDivideJoin(t *testing.T) {
	c := newTestCalculator(t, nil)
	root := c.State().Tree.Root
	require.NoError(t, c.Divide(root.ID))

	e := c.Export()
	require.Len(t, e.Rows, 2)
	assert.Equal(t, "192.168.1.0 - 192.168.1.127", e.Rows[0].AddressRange)
	assert.Equal(t, "192.168.1.128 - 192.168.1.255", e.Rows[1].AddressRange)
	assert.Equal(t, 25, e.Rows[0].Mask)
	assert.Equal(t,
		"index.html?network=192.168.1.0&mask=24&division=3.1&remarks=,,&cols=ff&rf=1&re=1&name=",
		e.Link)
	assert.Same(t, e, c.Export(), "export is cached until something changes")

	assert.Error(t, c.Divide(root.ID), "only leaves can be divided")
	assert.Error(t, c.Join(root.Left().ID), "leaves cannot be joined")
	assert.Error(t, c.Divide(12345))

	require.NoError(t, c.Join(root.ID))
	assert.Len(t, c.Export().Rows, 1)
}

func TestCalculatorDivideLimit(t *testing.T) {
	c := newTestCalculator(t, nil)
	_, err := c.SetNetwork("10.0.0.7", "32")
	require.NoError(t, err)
	err = c.Divide(c.State().Tree.Root.ID)
	assert.Error(t, err)
	assert.True(t, c.State().Tree.Root.IsLeaf())
}

func TestCalculatorRemarks(t *testing.T) {
	c := newTestCalculator(t, nil)
	root := c.State().Tree.Root
	require.NoError(t, c.SetRemark(root.ID, "before split"))
	require.NoError(t, c.Divide(root.ID))
	assert.Error(t, c.SetRemark(root.ID, "internal"))

	for i := 0; i < 2; i++ {
		leaves := Leaves(root)
		require.NoError(t, c.Divide(leaves[0].ID))
	}
	for i, l := range Leaves(root) {
		require.NoError(t, c.SetRemark(l.ID, "child"+string(rune('0'+i))))
	}
	assert.Contains(t, c.Export().Query, "remarks=child0,child1,child2,child3,")

	require.NoError(t, c.Join(root.ID))
	rows := c.Export().Rows
	require.Len(t, rows, 1)
	assert.Equal(t, "before split", rows[0].Remark)
}

func TestCalculatorSettings(t *testing.T) {
	c := newTestCalculator(t, nil)
	require.NoError(t, c.SetColumn("netmask", false))
	require.NoError(t, c.SetColumn("join", false))
	assert.Error(t, c.SetColumn("bogus", false))
	c.SetReserve("2", "-5")
	c.SetName("Lab #1")

	e := c.Export()
	assert.False(t, e.Columns.Visible("netmask"))
	assert.Contains(t, e.Query, "&cols=be&rf=2&re=1&name=Lab%20%231")
	assert.Equal(t, "192.168.1.2 - 192.168.1.254", e.Rows[0].UsableRange)
}

func TestCalculatorSetNetwork(t *testing.T) {
	c := newTestCalculator(t, nil)

	_, err := c.SetNetwork("192.168.1", "24")
	assert.Equal(t, ErrInvalidAddress, errors.Cause(err))
	_, err = c.SetNetwork("10.0.0.0", "40")
	assert.Equal(t, ErrInvalidMask, errors.Cause(err))
	assert.Equal(t, "192.168.1.0", c.State().Network.String())
	assert.Equal(t, 24, c.State().Mask)

	// same mask: only the address moves, divisions stay
	require.NoError(t, c.Divide(c.State().Tree.Root.ID))
	change, err := c.SetNetwork("10.1.2.3", "24")
	require.NoError(t, err)
	assert.True(t, change.Normalized)
	assert.False(t, change.Reset)
	assert.Equal(t, "10.1.2.0", change.Network.String())
	assert.Len(t, c.Export().Rows, 2)

	// a divided tree without a confirmer keeps its mask
	change, err = c.SetNetwork("10.1.2.3", "16")
	require.NoError(t, err)
	assert.True(t, change.Declined)
	assert.Equal(t, 24, change.Mask)
	assert.Equal(t, "10.1.2.0", c.State().Network.String())
	assert.Len(t, c.Export().Rows, 2)
}

func TestCalculatorSetNetworkConfirm(t *testing.T) {
	var asked [][2]int
	answer := false
	c := newTestCalculator(t, func(oldMask, newMask int) bool {
		asked = append(asked, [2]int{oldMask, newMask})
		return answer
	})

	// undivided trees change mask without asking
	change, err := c.SetNetwork("10.0.0.0", "16")
	require.NoError(t, err)
	assert.True(t, change.Reset)
	assert.Empty(t, asked)

	require.NoError(t, c.Divide(c.State().Tree.Root.ID))
	change, err = c.SetNetwork("10.0.0.0", "20")
	require.NoError(t, err)
	assert.True(t, change.Declined)
	assert.Equal(t, [][2]int{{16, 20}}, asked)
	assert.False(t, c.State().Tree.Root.IsLeaf())

	answer = true
	change, err = c.SetNetwork("10.0.0.0", "20")
	require.NoError(t, err)
	assert.True(t, change.Reset)
	assert.Equal(t, 20, c.State().Mask)
	assert.True(t, c.State().Tree.Root.IsLeaf())
}

func TestCalculatorLoad(t *testing.T) {
	c := newTestCalculator(t, nil)
	oldRoot := c.State().Tree.Root.ID
	require.NoError(t, c.Load(
		"?network=10.0.0.0&mask=24&division=7.b0&remarks=a,b,c%252Cd,e,&cols=7f&rf=2&re=2&name=x"))
	s := c.State()
	assert.Equal(t, "10.0.0.0", s.Network.String())
	assert.Equal(t, []string{"a", "b", "c,d", "e"}, remarksOf(s.Tree.Root))
	assert.True(t, s.Tree.Root.ID > oldRoot, "ids keep growing across loads")
	assert.False(t, s.Columns.Visible("subnet"))

	e := c.Export()
	assert.Len(t, e.Rows, 4)
	assert.Equal(t, 4, e.JoinSpan)

	assert.Error(t, c.Load("network=1.2.3.4.5&mask=24&division=1.0"))
	assert.Equal(t, "10.0.0.0", c.State().Network.String())

	require.NoError(t, c.Load("mask=16"))
	assert.Equal(t, 16, c.State().Mask)
	assert.True(t, c.State().Tree.Root.IsLeaf())
}

func TestCalculatorLocate(t *testing.T) {
	c := newTestCalculator(t, nil)
	require.NoError(t, c.Load("network=10.0.0.0&mask=24&division=7.b0"))

	cases := [][2]string{
		{"10.0.0.0", "10.0.0.0/26"},
		{"10.0.0.70", "10.0.0.64/27"},
		{"10.0.0.127", "10.0.0.96/27"},
		{"10.0.0.255", "10.0.0.128/25"},
	}
	for _, q := range cases {
		addr, err := ParseAddr(q[0])
		require.NoError(t, err)
		row, ok := c.Locate(addr)
		if assert.True(t, ok, q[0]) {
			assert.Equal(t, q[1], row.Subnet, q[0])
		}
	}
	_, ok := c.Locate(Addr(0x0a000100))
	assert.False(t, ok)
}

func TestCalculatorJoinHighlight(t *testing.T) {
	c := newTestCalculator(t, nil)
	require.NoError(t, c.Load("network=10.0.0.0&mask=24&division=7.b0"))
	a := c.State().Tree.Root.Left()

	rowIdx, ids, err := c.JoinHighlight(a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, rowIdx)
	assert.Len(t, ids, 4)
	assert.NotContains(t, ids, a.ID)

	rowIdx, ids, err = c.JoinHighlight(c.State().Tree.Root.Right().ID)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, rowIdx)
	assert.Empty(t, ids)

	_, _, err = c.JoinHighlight(-1)
	assert.Error(t, err)
}
