package constraint

import (
	"slices"

	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// ChemotaxisName is the registered type of Chemotaxis.
const ChemotaxisName = "Chemotaxis"

func init() {
	Register(ChemotaxisName, func(p Params) (cpm.Constraint, error) {
		lambda, err := p.floats(ChemotaxisName, "LAMBDA_CH")
		if err != nil {
			return nil, err
		}
		f, ok := p["field"].(*grid.Field)
		if !ok {
			return nil, paramErr(ChemotaxisName, "field", "got %T, want *grid.Field", p["field"])
		}
		return NewChemotaxis(lambda, f)
	})
}

// Chemotaxis favours copies up the gradient of a chemokine field. The field
// is shared with whoever updates it between steps.
type Chemotaxis struct {
	lambda []float64
	field  *grid.Field
}

func NewChemotaxis(lambda []float64, field *grid.Field) (*Chemotaxis, error) {
	if field == nil {
		return nil, paramErr(ChemotaxisName, "field", "missing")
	}
	return &Chemotaxis{lambda: lambda, field: field}, nil
}

func (c *Chemotaxis) Name() string               { return ChemotaxisName }
func (c *Chemotaxis) Capability() cpm.Capability { return cpm.Soft }

// Field returns the chemokine field read by the constraint.
func (c *Chemotaxis) Field() *grid.Field { return c.field }

func (c *Chemotaxis) Validate(v cpm.View) error {
	if err := perKind(ChemotaxisName, "LAMBDA_CH", len(c.lambda), v.Kinds()); err != nil {
		return err
	}
	if want, got := v.Encoding().Extents(), c.field.Extents(); !slices.Equal(want, got) {
		return paramErr(ChemotaxisName, "field", "extents %v do not match the grid %v", got, want)
	}
	for d := range v.Encoding().Dims() {
		if v.Encoding().Torus(d) != c.field.Torus(d) {
			return paramErr(ChemotaxisName, "field", "boundary of dimension %d differs from the grid", d)
		}
	}
	return nil
}

func (c *Chemotaxis) DeltaH(v cpm.View, src, tgt grid.Index, srcID, _ cpm.CellID) float64 {
	if srcID == cpm.Background {
		return 0
	}
	l := c.lambda[cpm.KindOrBackground(v, srcID)]
	if l == 0 {
		return 0
	}
	return -l * (c.field.At(tgt) - c.field.At(src))
}
