// Package chemotaxis runs persistent cells climbing the gradient of a
// chemokine secreted at the arena center.
package chemotaxis

import (
	"image/color"
	"math"

	"cellpotts/internal/sims/cpmsim"
	"cellpotts/pkg/constraint"
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// Cell is the only non-medium kind.
const Cell cpm.CellKind = 1

// Scenario returns the chemotaxis scenario.
func Scenario() cpmsim.Scenario {
	cfg := cpm.DefaultConfig()
	cfg.Extents = []int{150, 150}
	cfg.Temperature = 20
	cfg.Kinds = 2
	cfg.Seed = 7
	return cpmsim.Scenario{
		Name:   "chemotaxis",
		Config: cfg,
		Colors: []color.RGBA{
			{R: 12, G: 14, B: 20, A: 255},
			{R: 112, G: 188, B: 112, A: 255},
		},
		Setup: setup,
	}
}

// Source secretes into a small disk and lets the field diffuse and decay.
type Source struct {
	Center    grid.Coord
	Radius    int
	Rate      float64
	Decay     float64
	Diffusion int

	scratch []float64
}

// Update runs one secretion, diffusion and decay round on f.
func (s *Source) Update(f *grid.Field) {
	for dx := -s.Radius; dx <= s.Radius; dx++ {
		for dy := -s.Radius; dy <= s.Radius; dy++ {
			if dx*dx+dy*dy > s.Radius*s.Radius {
				continue
			}
			c := grid.Coord{s.Center[0] + dx, s.Center[1] + dy}
			if f.Contains(c) {
				f.SetCoord(c, f.AtCoord(c)+s.Rate)
			}
		}
	}
	for k := 0; k < s.Diffusion; k++ {
		s.scratch = grid.Diffuse(f, 1, s.scratch)
	}
	grid.Scale(f, 1-s.Decay)
}

func setup(b *cpmsim.Builder) error {
	cells := b.Int("cells", "Cells", 12)
	radius := b.Float("radius", "Cell radius", 6)
	lambdaCh := b.Float("lambda_ch", "Chemotaxis lambda", 400)
	lambdaDir := b.Float("lambda_dir", "Persistence lambda", 20)
	persist := b.Float("persist", "Persistence", 0.8)

	e := b.Engine
	enc := e.Encoding()
	field := grid.NewField(enc)
	src := &Source{
		Center:    grid.Coord{enc.Extent(0) / 2, enc.Extent(1) / 2},
		Radius:    3,
		Rate:      1,
		Decay:     0.002,
		Diffusion: 4,
	}
	warmup := b.Int("warmup", "Field warm-up rounds", 50)
	for k := 0; k < warmup; k++ {
		src.Update(field)
	}
	b.ShowField(field)
	b.EveryStep(func(*cpm.Engine) { src.Update(field) })

	if _, err := cpmsim.SeedRandom(e, Cell, cells, radius); err != nil {
		return err
	}
	vol := math.Round(math.Pi * radius * radius)
	return b.Attach(
		constraint.Descriptor{Type: constraint.AdhesionName, Params: constraint.Params{
			"J": [][]float64{{0, 20}, {20, 40}},
		}},
		constraint.Descriptor{Type: constraint.VolumeName, Params: constraint.Params{
			"LAMBDA_V": []float64{0, 10},
			"V":        []float64{0, vol},
		}},
		constraint.Descriptor{Type: constraint.ChemotaxisName, Params: constraint.Params{
			"LAMBDA_CH": []float64{0, lambdaCh},
			"field":     field,
		}},
		constraint.Descriptor{Type: constraint.PersistenceName, Params: constraint.Params{
			"LAMBDA_DIR": []float64{0, lambdaDir},
			"PERSIST":    []float64{0, persist},
		}},
		constraint.Descriptor{Type: constraint.SoftConnectivityName, Params: constraint.Params{
			"LAMBDA_CONNECTIVITY": []float64{0, 200},
		}},
	)
}

func init() {
	cpmsim.Register(Scenario())
}
