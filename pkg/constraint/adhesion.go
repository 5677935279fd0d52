package constraint

import (
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// AdhesionName is the registered type of Adhesion.
const AdhesionName = "Adhesion"

func init() {
	Register(AdhesionName, func(p Params) (cpm.Constraint, error) {
		j, err := p.matrix(AdhesionName, "J")
		if err != nil {
			return nil, err
		}
		return NewAdhesion(j)
	})
}

// Adhesion charges J[k1][k2] for every pair of Moore neighbors owned by
// different cells of kinds k1 and k2.
type Adhesion struct {
	j  [][]float64
	nb []grid.Index
}

// NewAdhesion takes a square, symmetric kinds×kinds matrix.
func NewAdhesion(j [][]float64) (*Adhesion, error) {
	for r, row := range j {
		if len(row) != len(j) {
			return nil, paramErr(AdhesionName, "J", "row %d has %d entries, want %d", r, len(row), len(j))
		}
	}
	for r := range j {
		for c := range r {
			if j[r][c] != j[c][r] {
				return nil, paramErr(AdhesionName, "J", "not symmetric at [%d][%d]", r, c)
			}
		}
	}
	return &Adhesion{j: j}, nil
}

func (a *Adhesion) Name() string               { return AdhesionName }
func (a *Adhesion) Capability() cpm.Capability { return cpm.Soft }

func (a *Adhesion) Validate(v cpm.View) error {
	return perKind(AdhesionName, "J", len(a.j), v.Kinds())
}

func (a *Adhesion) DeltaH(v cpm.View, src, tgt grid.Index, srcID, tgtID cpm.CellID) float64 {
	a.nb = v.Encoding().Neighbors(tgt, a.nb[:0])
	return a.h(v, srcID) - a.h(v, tgtID)
}

// h is the adhesion energy pixel tgt would have if owned by id.
func (a *Adhesion) h(v cpm.View, id cpm.CellID) float64 {
	row := a.j[cpm.KindOrBackground(v, id)]
	r := 0.0
	for _, n := range a.nb {
		if nid := v.CellIDAt(n); nid != id {
			r += row[cpm.KindOrBackground(v, nid)]
		}
	}
	return r
}
