// Package migration runs actin-driven cells crawling inside a walled arena.
package migration

import (
	"image/color"
	"math"

	"cellpotts/internal/sims/cpmsim"
	"cellpotts/pkg/constraint"
	"cellpotts/pkg/cpm"
)

const (
	Cell cpm.CellKind = 1
	Wall cpm.CellKind = 2
)

// Scenario returns the migration scenario.
func Scenario() cpmsim.Scenario {
	cfg := cpm.DefaultConfig()
	cfg.Extents = []int{150, 150}
	cfg.Torus = []bool{false, false}
	cfg.Temperature = 20
	cfg.Kinds = 3
	cfg.Seed = 2024
	return cpmsim.Scenario{
		Name:   "migration",
		Config: cfg,
		Colors: []color.RGBA{
			{R: 16, G: 16, B: 22, A: 255},
			{R: 214, G: 96, B: 77, A: 255},
			{R: 110, G: 110, B: 118, A: 255},
		},
		Setup: setup,
	}
}

func setup(b *cpmsim.Builder) error {
	cells := b.Int("cells", "Cells", 8)
	radius := b.Float("radius", "Cell radius", 8)
	maxAct := b.Int("max_act", "Max activity", 40)
	lambdaAct := b.Float("lambda_act", "Activity lambda", 200)

	e := b.Engine
	if _, err := cpmsim.SeedFrame(e, Wall, 2); err != nil {
		return err
	}
	if _, err := cpmsim.SeedRandom(e, Cell, cells, radius); err != nil {
		return err
	}
	vol := math.Round(math.Pi * radius * radius)
	// Moore pair count of a disk grows roughly like 3.6 times its
	// circumference.
	perim := math.Round(3.6 * 2 * math.Pi * radius)
	return b.Attach(
		constraint.Descriptor{Type: constraint.AdhesionName, Params: constraint.Params{
			"J": [][]float64{
				{0, 20, 0},
				{20, 0, 20},
				{0, 20, 0},
			},
		}},
		constraint.Descriptor{Type: constraint.VolumeName, Params: constraint.Params{
			"LAMBDA_V": []float64{0, 50, 0},
			"V":        []float64{0, vol, 0},
		}},
		constraint.Descriptor{Type: constraint.PerimeterName, Params: constraint.Params{
			"LAMBDA_P": []float64{0, 2, 0},
			"P":        []float64{0, perim, 0},
		}},
		constraint.Descriptor{Type: constraint.ActivityName, Params: constraint.Params{
			"LAMBDA_ACT": []float64{0, lambdaAct, 0},
			"MAX_ACT":    []int{0, maxAct, 0},
			"ACT_MEAN":   "geometric",
		}},
		constraint.Descriptor{Type: constraint.ConnectivityName, Params: constraint.Params{
			"CONNECTED": []bool{false, true, false},
		}},
		constraint.Descriptor{Type: constraint.BarrierName, Params: constraint.Params{
			"IS_BARRIER": []bool{false, false, true},
		}},
	)
}

func init() {
	cpmsim.Register(Scenario())
}
