package constraint

import (
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// VolumeRangeName is the registered type of VolumeRange.
const VolumeRangeName = "VolumeRange"

func init() {
	Register(VolumeRangeName, func(p Params) (cpm.Constraint, error) {
		lo, err := p.ints(VolumeRangeName, "VRANGE_MIN")
		if err != nil {
			return nil, err
		}
		hi, err := p.ints(VolumeRangeName, "VRANGE_MAX")
		if err != nil {
			return nil, err
		}
		return NewVolumeRange(lo, hi)
	})
}

// VolumeRange keeps cell volumes within [VRANGE_MIN, VRANGE_MAX]. A
// maximum of zero leaves growth unbounded.
type VolumeRange struct {
	lo, hi []int
}

func NewVolumeRange(lo, hi []int) (*VolumeRange, error) {
	if len(lo) != len(hi) {
		return nil, paramErr(VolumeRangeName, "VRANGE_MAX", "has %d entries, VRANGE_MIN has %d", len(hi), len(lo))
	}
	for k := range lo {
		if lo[k] < 0 {
			return nil, paramErr(VolumeRangeName, "VRANGE_MIN", "entry %d is negative (%d)", k, lo[k])
		}
		if hi[k] < 0 || (hi[k] > 0 && hi[k] < lo[k]) {
			return nil, paramErr(VolumeRangeName, "VRANGE_MAX", "entry %d (%d) is below VRANGE_MIN (%d)", k, hi[k], lo[k])
		}
	}
	return &VolumeRange{lo: lo, hi: hi}, nil
}

func (c *VolumeRange) Name() string               { return VolumeRangeName }
func (c *VolumeRange) Capability() cpm.Capability { return cpm.Hard }

func (c *VolumeRange) Validate(v cpm.View) error {
	return perKind(VolumeRangeName, "VRANGE_MIN", len(c.lo), v.Kinds())
}

func (c *VolumeRange) Fulfilled(v cpm.View, _, _ grid.Index, srcID, tgtID cpm.CellID) bool {
	if srcID != cpm.Background {
		k := cpm.KindOrBackground(v, srcID)
		vol, _ := v.VolumeOf(srcID)
		if c.hi[k] > 0 && vol+1 > c.hi[k] {
			return false
		}
	}
	if tgtID != cpm.Background {
		k := cpm.KindOrBackground(v, tgtID)
		vol, _ := v.VolumeOf(tgtID)
		if vol-1 < c.lo[k] {
			return false
		}
	}
	return true
}
