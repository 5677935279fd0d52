package constraint

import (
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// BarrierName is the registered type of Barrier.
const BarrierName = "Barrier"

func init() {
	Register(BarrierName, func(p Params) (cpm.Constraint, error) {
		barrier, err := p.bools(BarrierName, "IS_BARRIER")
		if err != nil {
			return nil, err
		}
		return NewBarrier(barrier)
	})
}

// Barrier freezes cells of IS_BARRIER kinds: they neither grow nor shrink.
type Barrier struct {
	barrier []bool
}

func NewBarrier(barrier []bool) (*Barrier, error) {
	if len(barrier) > 0 && barrier[cpm.BackgroundKind] {
		return nil, paramErr(BarrierName, "IS_BARRIER", "the background kind cannot be a barrier")
	}
	return &Barrier{barrier: barrier}, nil
}

func (c *Barrier) Name() string               { return BarrierName }
func (c *Barrier) Capability() cpm.Capability { return cpm.Hard }

func (c *Barrier) Validate(v cpm.View) error {
	return perKind(BarrierName, "IS_BARRIER", len(c.barrier), v.Kinds())
}

func (c *Barrier) Fulfilled(v cpm.View, _, _ grid.Index, srcID, tgtID cpm.CellID) bool {
	return !c.barrier[cpm.KindOrBackground(v, srcID)] && !c.barrier[cpm.KindOrBackground(v, tgtID)]
}
