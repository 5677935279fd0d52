package constraint

import (
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// PerimeterName is the registered type of Perimeter.
const PerimeterName = "Perimeter"

func init() {
	Register(PerimeterName, func(p Params) (cpm.Constraint, error) {
		lambda, err := p.floats(PerimeterName, "LAMBDA_P")
		if err != nil {
			return nil, err
		}
		target, err := p.floats(PerimeterName, "P")
		if err != nil {
			return nil, err
		}
		return NewPerimeter(lambda, target)
	})
}

// Perimeter penalises LAMBDA_P·(P-p)² where p counts the Moore neighbor
// pairs a cell shares with other owners. Perimeters are kept up to date
// incrementally from pixel changes.
type Perimeter struct {
	lambda, target []float64
	perims         map[cpm.CellID]int
	nb             []grid.Index
}

func NewPerimeter(lambda, target []float64) (*Perimeter, error) {
	if len(lambda) != len(target) {
		return nil, paramErr(PerimeterName, "P", "has %d entries, LAMBDA_P has %d", len(target), len(lambda))
	}
	if err := nonNegative(PerimeterName, "LAMBDA_P", lambda); err != nil {
		return nil, err
	}
	if err := nonNegative(PerimeterName, "P", target); err != nil {
		return nil, err
	}
	return &Perimeter{lambda: lambda, target: target, perims: make(map[cpm.CellID]int)}, nil
}

func (c *Perimeter) Name() string               { return PerimeterName }
func (c *Perimeter) Capability() cpm.Capability { return cpm.Soft }

func (c *Perimeter) Validate(v cpm.View) error {
	return perKind(PerimeterName, "LAMBDA_P", len(c.lambda), v.Kinds())
}

// Init counts perimeters from scratch.
func (c *Perimeter) Init(v cpm.View) {
	clear(c.perims)
	enc := v.Encoding()
	for i, id := range v.Pixels(true) {
		c.nb = enc.Neighbors(i, c.nb[:0])
		for _, n := range c.nb {
			if v.CellIDAt(n) != id {
				c.perims[id]++
			}
		}
	}
}

// PerimeterOf returns the tracked perimeter of id.
func (c *Perimeter) PerimeterOf(id cpm.CellID) int { return c.perims[id] }

func (c *Perimeter) PixelChanged(v cpm.View, i grid.Index, oldID, newID cpm.CellID) {
	c.nb = v.Encoding().Neighbors(i, c.nb[:0])
	nOld, nNew := 0, 0
	for _, n := range c.nb {
		nid := v.CellIDAt(n)
		if nid != newID {
			nNew++
		}
		if nid != oldID {
			nOld++
		}
		if nid != cpm.Background {
			if nid == oldID {
				c.perims[nid]++
			}
			if nid == newID {
				c.perims[nid]--
			}
		}
	}
	if oldID != cpm.Background {
		if _, alive := v.VolumeOf(oldID); alive {
			c.perims[oldID] -= nOld
		} else {
			delete(c.perims, oldID)
		}
	}
	if newID != cpm.Background {
		c.perims[newID] += nNew
	}
}

func (c *Perimeter) DeltaH(v cpm.View, _, tgt grid.Index, srcID, tgtID cpm.CellID) float64 {
	c.nb = v.Encoding().Neighbors(tgt, c.nb[:0])
	dSrc, dTgt := 0, 0
	for _, n := range c.nb {
		nid := v.CellIDAt(n)
		if nid != srcID {
			dSrc++
		} else {
			dSrc--
		}
		if nid != tgtID {
			dTgt--
		} else {
			dTgt++
		}
	}
	return c.term(v, srcID, dSrc) + c.term(v, tgtID, dTgt)
}

func (c *Perimeter) term(v cpm.View, id cpm.CellID, change int) float64 {
	if id == cpm.Background || change == 0 {
		return 0
	}
	k := cpm.KindOrBackground(v, id)
	l := c.lambda[k]
	if l == 0 {
		return 0
	}
	p := float64(c.perims[id])
	before := c.target[k] - p
	after := c.target[k] - (p + float64(change))
	return l * (after*after - before*before)
}
