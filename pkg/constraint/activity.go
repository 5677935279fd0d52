package constraint

import (
	"math"

	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// ActivityName is the registered type of Activity.
const ActivityName = "Activity"

// ActMean selects how the activity around a pixel is averaged.
type ActMean uint8

const (
	GeometricMean ActMean = iota
	ArithmeticMean
)

func init() {
	Register(ActivityName, func(p Params) (cpm.Constraint, error) {
		lambda, err := p.floats(ActivityName, "LAMBDA_ACT")
		if err != nil {
			return nil, err
		}
		maxAct, err := p.ints(ActivityName, "MAX_ACT")
		if err != nil {
			return nil, err
		}
		mean := GeometricMean
		if raw, ok := p["ACT_MEAN"]; ok {
			switch raw {
			case "geometric":
			case "arithmetic":
				mean = ArithmeticMean
			default:
				return nil, paramErr(ActivityName, "ACT_MEAN", "got %v, want geometric or arithmetic", raw)
			}
		}
		return NewActivity(lambda, maxAct, mean)
	})
}

// Activity models actin-driven protrusion. Every pixel a cell gains is set
// to the kind's MAX_ACT and loses one unit per Monte Carlo step. Copies from
// active into less active regions are favoured.
type Activity struct {
	lambda []float64
	maxAct []int
	mean   ActMean
	act    map[grid.Index]int
	nb     []grid.Index
}

func NewActivity(lambda []float64, maxAct []int, mean ActMean) (*Activity, error) {
	if len(lambda) != len(maxAct) {
		return nil, paramErr(ActivityName, "MAX_ACT", "has %d entries, LAMBDA_ACT has %d", len(maxAct), len(lambda))
	}
	if err := nonNegative(ActivityName, "LAMBDA_ACT", lambda); err != nil {
		return nil, err
	}
	for k, m := range maxAct {
		if m < 0 {
			return nil, paramErr(ActivityName, "MAX_ACT", "entry %d is negative (%d)", k, m)
		}
	}
	return &Activity{lambda: lambda, maxAct: maxAct, mean: mean, act: make(map[grid.Index]int)}, nil
}

func (c *Activity) Name() string               { return ActivityName }
func (c *Activity) Capability() cpm.Capability { return cpm.Soft }

func (c *Activity) Validate(v cpm.View) error {
	return perKind(ActivityName, "LAMBDA_ACT", len(c.lambda), v.Kinds())
}

// ActivityOf returns the raw activity value stored at i.
func (c *Activity) ActivityOf(i grid.Index) int { return c.act[i] }

func (c *Activity) PixelChanged(v cpm.View, i grid.Index, _, newID cpm.CellID) {
	if newID == cpm.Background {
		delete(c.act, i)
		return
	}
	if m := c.maxAct[cpm.KindOrBackground(v, newID)]; m > 0 {
		c.act[i] = m
	} else {
		delete(c.act, i)
	}
}

func (c *Activity) StepComplete(cpm.View) {
	for i, a := range c.act {
		if a <= 1 {
			delete(c.act, i)
		} else {
			c.act[i] = a - 1
		}
	}
}

func (c *Activity) DeltaH(v cpm.View, src, tgt grid.Index, srcID, tgtID cpm.CellID) float64 {
	id := srcID
	if id == cpm.Background {
		id = tgtID
	}
	k := cpm.KindOrBackground(v, id)
	l, m := c.lambda[k], c.maxAct[k]
	if l == 0 || m == 0 {
		return 0
	}
	return l * (c.at(v, tgt) - c.at(v, src)) / float64(m)
}

// at averages the activity of i and its neighbors owned by the same cell.
func (c *Activity) at(v cpm.View, i grid.Index) float64 {
	id := v.CellIDAt(i)
	if id == cpm.Background {
		return 0
	}
	c.nb = v.Encoding().Neighbors(i, c.nb[:0])
	n := 1
	switch c.mean {
	case ArithmeticMean:
		sum := float64(c.act[i])
		for _, p := range c.nb {
			if v.CellIDAt(p) == id {
				sum += float64(c.act[p])
				n++
			}
		}
		return sum / float64(n)
	default:
		prod := float64(c.act[i])
		for _, p := range c.nb {
			if v.CellIDAt(p) == id {
				prod *= float64(c.act[p])
				n++
			}
		}
		if prod == 0 {
			return 0
		}
		return math.Pow(prod, 1/float64(n))
	}
}
