package constraint

import (
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// VolumeName is the registered type of Volume.
const VolumeName = "Volume"

func init() {
	Register(VolumeName, func(p Params) (cpm.Constraint, error) {
		lambda, err := p.floats(VolumeName, "LAMBDA_V")
		if err != nil {
			return nil, err
		}
		target, err := p.floats(VolumeName, "V")
		if err != nil {
			return nil, err
		}
		return NewVolume(lambda, target)
	})
}

// Volume penalises LAMBDA_V·(V-v)² per cell. The background is exempt.
type Volume struct {
	lambda, target []float64
}

func NewVolume(lambda, target []float64) (*Volume, error) {
	if len(lambda) != len(target) {
		return nil, paramErr(VolumeName, "V", "has %d entries, LAMBDA_V has %d", len(target), len(lambda))
	}
	if err := nonNegative(VolumeName, "LAMBDA_V", lambda); err != nil {
		return nil, err
	}
	if err := nonNegative(VolumeName, "V", target); err != nil {
		return nil, err
	}
	return &Volume{lambda: lambda, target: target}, nil
}

func (c *Volume) Name() string               { return VolumeName }
func (c *Volume) Capability() cpm.Capability { return cpm.Soft }

func (c *Volume) Validate(v cpm.View) error {
	return perKind(VolumeName, "LAMBDA_V", len(c.lambda), v.Kinds())
}

func (c *Volume) DeltaH(v cpm.View, _, _ grid.Index, srcID, tgtID cpm.CellID) float64 {
	return c.term(v, srcID, 1) + c.term(v, tgtID, -1)
}

func (c *Volume) term(v cpm.View, id cpm.CellID, gain float64) float64 {
	if id == cpm.Background {
		return 0
	}
	k := cpm.KindOrBackground(v, id)
	l := c.lambda[k]
	if l == 0 {
		return 0
	}
	vol, _ := v.VolumeOf(id)
	d := c.target[k] - float64(vol)
	return l * ((d-gain)*(d-gain) - d*d)
}
