package constraint

import (
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// SoftConnectivityName is the registered type of SoftConnectivity.
const SoftConnectivityName = "SoftConnectivity"

func init() {
	Register(SoftConnectivityName, func(p Params) (cpm.Constraint, error) {
		lambda, err := p.floats(SoftConnectivityName, "LAMBDA_CONNECTIVITY")
		if err != nil {
			return nil, err
		}
		return NewSoftConnectivity(lambda)
	})
}

// SoftConnectivity charges LAMBDA_CONNECTIVITY for every extra piece a copy
// would break a cell into.
type SoftConnectivity struct {
	lambda  []float64
	borders cellBorders
}

func NewSoftConnectivity(lambda []float64) (*SoftConnectivity, error) {
	if err := nonNegative(SoftConnectivityName, "LAMBDA_CONNECTIVITY", lambda); err != nil {
		return nil, err
	}
	return &SoftConnectivity{lambda: lambda, borders: newCellBorders()}, nil
}

func (c *SoftConnectivity) Name() string               { return SoftConnectivityName }
func (c *SoftConnectivity) Capability() cpm.Capability { return cpm.Soft }

func (c *SoftConnectivity) Validate(v cpm.View) error {
	return perKind(SoftConnectivityName, "LAMBDA_CONNECTIVITY", len(c.lambda), v.Kinds())
}

func (c *SoftConnectivity) Init(v cpm.View) { c.borders.init(v) }

func (c *SoftConnectivity) PixelChanged(v cpm.View, i grid.Index, oldID, _ cpm.CellID) {
	c.borders.changed(v, i, oldID)
}

func (c *SoftConnectivity) DeltaH(v cpm.View, _, tgt grid.Index, _, tgtID cpm.CellID) float64 {
	if tgtID == cpm.Background {
		return 0
	}
	l := c.lambda[cpm.KindOrBackground(v, tgtID)]
	if l == 0 || c.borders.locallyConnected(v, tgt, tgtID) {
		return 0
	}
	before, after := c.borders.split(v, tgt, tgtID)
	if after <= before {
		return 0
	}
	return l * float64(after-before)
}
