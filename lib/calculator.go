package lib

import (
	"net/netip"
	"sort"

	"github.com/gaissmai/bart"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Confirmer is asked before a divided tree is discarded because the base
// mask changed.
type Confirmer func(oldMask, newMask int) bool

// NetworkChange reports the outcome of Calculator.SetNetwork.
type NetworkChange struct {
	Network Addr
	Mask    int
	// Normalized is set when the entered address was not on the mask
	// boundary and has been moved to it.
	Normalized bool
	// Reset is set when the tree was discarded.
	Reset bool
	// Declined is set when the mask change was refused; the old mask stays.
	Declined bool
}

// Export is everything a front end needs to render the current state.
type Export struct {
	Query    string  `json:"query"`
	Link     string  `json:"link"`
	Columns  Columns `json:"-"`
	JoinSpan int     `json:"joinSpan"`
	Rows     []Row   `json:"rows"`
}

// Calculator is an editing session over one partition. It is not safe for
// concurrent use.
type Calculator struct {
	log      *zap.SugaredLogger
	state    *State
	confirm  Confirmer
	linkBase string

	exported *Export
	lookup   *bart.Table[int]
}

// NewCalculator creates a session starting from state. linkBase is the
// page the exported links point to.
func NewCalculator(
	log *zap.SugaredLogger, state *State, linkBase string,
	confirm Confirmer) *Calculator {
	if state.Tree == nil {
		state.Tree = NewTree()
	}
	return &Calculator{
		log:      log,
		state:    state,
		confirm:  confirm,
		linkBase: linkBase,
	}
}

// State returns the live state of the session.
func (c *Calculator) State() *State {
	return c.state
}

// Load replaces the session state with a decoded bookmark. Missing network
// or mask keep their current values.
func (c *Calculator) Load(query string) error {
	s, err := DecodeBookmark(query, c.state)
	if err != nil {
		return err
	}
	for _, p := range s.Problems {
		c.log.Warnw("bookmark field ignored", "error", p)
	}
	if s.Normalized {
		c.log.Infow("network moved to its mask boundary",
			"network", s.Network.String(), "mask", s.Mask)
	}
	c.state = s
	c.changed()
	c.log.Debugw("bookmark loaded", "complete", s.Complete,
		"leaves", len(Leaves(s.Tree.Root)))
	return nil
}

// SetNetwork changes the base network. A malformed address or mask leaves
// everything unchanged. Changing the mask of a divided tree discards it, so
// the Confirmer is asked first; without a Confirmer the change is declined.
func (c *Calculator) SetNetwork(addrText, maskText string) (NetworkChange, error) {
	addr, err := ParseAddr(addrText)
	if err != nil {
		return NetworkChange{}, err
	}
	mask, err := ParseMask(maskText)
	if err != nil {
		return NetworkChange{}, err
	}

	s := c.state
	change := NetworkChange{Mask: mask}
	switch {
	case mask == s.Mask:
	case s.Tree.Root.IsLeaf():
		change.Reset = true
	case c.confirm != nil && c.confirm(s.Mask, mask):
		change.Reset = true
	default:
		change.Declined = true
		change.Mask = s.Mask
	}
	change.Network = NetworkAddr(addr, change.Mask)
	change.Normalized = change.Network != addr

	s.Network, s.Mask = change.Network, change.Mask
	if change.Reset {
		s.Tree.StartOver()
	}
	c.changed()
	c.log.Debugw("network changed",
		"network", s.Network.String(), "mask", s.Mask,
		"reset", change.Reset, "declined", change.Declined)
	return change, nil
}

// StartOver discards every division.
func (c *Calculator) StartOver() {
	c.state.Tree.StartOver()
	c.changed()
}

// Divide splits the leaf with the given id into two halves.
func (c *Calculator) Divide(id int) error {
	n, _, mask, err := c.node(id)
	if err != nil {
		return err
	}
	if mask >= MaxMask {
		return errors.Errorf("a /%d cannot be divided", mask)
	}
	if err = c.state.Tree.Divide(n); err != nil {
		return err
	}
	c.changed()
	c.log.Debugw("subnet divided", "node", id, "mask", mask+1)
	return nil
}

// Join merges everything under the node with the given id back into it.
func (c *Calculator) Join(id int) error {
	n, _, mask, err := c.node(id)
	if err != nil {
		return err
	}
	if err = c.state.Tree.Join(n); err != nil {
		return err
	}
	c.changed()
	c.log.Debugw("subnet joined", "node", id, "mask", mask)
	return nil
}

// SetRemark changes the remark of a leaf.
func (c *Calculator) SetRemark(id int, remark string) error {
	n, _, _, err := c.node(id)
	if err != nil {
		return err
	}
	if !n.IsLeaf() {
		return errors.Errorf("node %d is divided and has no remark", id)
	}
	n.Remark = remark
	c.exported = nil
	return nil
}

// SetColumn shows or hides a column.
func (c *Calculator) SetColumn(name string, visible bool) error {
	if err := c.state.Columns.Set(name, visible); err != nil {
		return err
	}
	c.exported = nil
	return nil
}

// SetReserve sets the reserved address counts from user input. Invalid
// values become 1.
func (c *Calculator) SetReserve(front, end string) {
	c.state.ReserveFront = ParseReserve(front)
	c.state.ReserveEnd = ParseReserve(end)
	c.exported = nil
}

// SetName sets the network label.
func (c *Calculator) SetName(name string) {
	c.state.Name = name
	c.exported = nil
}

// Export recomputes the tree and returns the bookmark and the rows.
func (c *Calculator) Export() *Export {
	if c.exported != nil {
		return c.exported
	}
	rows, joinSpan := BuildRows(c.state)
	e := &Export{
		Query:    EncodeBookmark(c.state),
		Columns:  c.state.Columns,
		JoinSpan: joinSpan,
		Rows:     rows,
	}
	e.Link = BookmarkLink(c.linkBase, c.state)

	lookup := &bart.Table[int]{}
	for i, r := range rows {
		lookup.Insert(netip.PrefixFrom(r.Network.NetIP(), r.Mask), i)
	}
	c.exported, c.lookup = e, lookup
	return e
}

// Locate returns the row of the leaf holding addr.
func (c *Calculator) Locate(addr Addr) (Row, bool) {
	e := c.Export()
	i, ok := c.lookup.Lookup(addr.NetIP())
	if !ok {
		return Row{}, false
	}
	return e.Rows[i], true
}

// JoinHighlight returns what joining the node would merge: the indexes of
// its leaf rows and the ids of the nodes below it.
func (c *Calculator) JoinHighlight(id int) ([]int, []int, error) {
	n, _, _, err := c.node(id)
	if err != nil {
		return nil, nil, err
	}
	under := make(map[int]bool)
	for _, leaf := range Leaves(n) {
		under[leaf.ID] = true
	}
	var rowIdx []int
	for i, r := range c.Export().Rows {
		if under[r.NodeID] {
			rowIdx = append(rowIdx, i)
		}
	}
	var ids []int
	for d := range DescendantIDs(n) {
		if d != id {
			ids = append(ids, d)
		}
	}
	sort.Ints(ids)
	return rowIdx, ids, nil
}

func (c *Calculator) node(id int) (*Node, Addr, int, error) {
	n, addr, mask := locateNode(c.state, id)
	if n == nil {
		return nil, 0, 0, errors.Errorf("node %d not found", id)
	}
	return n, addr, mask, nil
}

func (c *Calculator) changed() {
	c.exported = nil
	c.lookup = nil
}
