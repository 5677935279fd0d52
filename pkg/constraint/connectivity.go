package constraint

import (
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// ConnectivityName is the registered type of Connectivity.
const ConnectivityName = "Connectivity"

func init() {
	Register(ConnectivityName, func(p Params) (cpm.Constraint, error) {
		connected, err := p.bools(ConnectivityName, "CONNECTED")
		if err != nil {
			return nil, err
		}
		return NewConnectivity(connected), nil
	})
}

// Connectivity rejects copies that would break a cell of a CONNECTED kind
// into more pieces.
type Connectivity struct {
	connected []bool
	borders   cellBorders
}

func NewConnectivity(connected []bool) *Connectivity {
	return &Connectivity{connected: connected, borders: newCellBorders()}
}

func (c *Connectivity) Name() string               { return ConnectivityName }
func (c *Connectivity) Capability() cpm.Capability { return cpm.Hard }

func (c *Connectivity) Validate(v cpm.View) error {
	return perKind(ConnectivityName, "CONNECTED", len(c.connected), v.Kinds())
}

func (c *Connectivity) Init(v cpm.View) { c.borders.init(v) }

func (c *Connectivity) PixelChanged(v cpm.View, i grid.Index, oldID, _ cpm.CellID) {
	c.borders.changed(v, i, oldID)
}

func (c *Connectivity) Fulfilled(v cpm.View, _, tgt grid.Index, _, tgtID cpm.CellID) bool {
	if tgtID == cpm.Background || !c.connected[cpm.KindOrBackground(v, tgtID)] {
		return true
	}
	if c.borders.locallyConnected(v, tgt, tgtID) {
		return true
	}
	before, after := c.borders.split(v, tgt, tgtID)
	return after <= before
}
