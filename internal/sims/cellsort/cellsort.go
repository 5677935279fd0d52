// Package cellsort seeds a mixed aggregate of two cell kinds that sort out
// by differential adhesion: the more cohesive kind gathers in the middle.
package cellsort

import (
	"image/color"

	"cellpotts/internal/sims/cpmsim"
	"cellpotts/pkg/constraint"
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

const (
	Dark  cpm.CellKind = 1
	Light cpm.CellKind = 2
)

// Scenario returns the cell sorting scenario.
func Scenario() cpmsim.Scenario {
	cfg := cpm.DefaultConfig()
	cfg.Extents = []int{120, 120}
	cfg.Temperature = 12
	cfg.Kinds = 3
	cfg.Seed = 1337
	return cpmsim.Scenario{
		Name:   "cellsort",
		Config: cfg,
		Colors: []color.RGBA{
			{R: 240, G: 240, B: 236, A: 255},
			{R: 60, G: 72, B: 160, A: 255},
			{R: 236, G: 170, B: 80, A: 255},
		},
		Setup: setup,
	}
}

func setup(b *cpmsim.Builder) error {
	radius := b.Float("radius", "Aggregate radius", 36)
	side := b.Int("side", "Cell side", 6)
	vol := float64(side * side)

	e := b.Engine
	w, h := e.Encoding().Extent(0), e.Encoding().Extent(1)
	if _, err := cpmsim.SeedBlob(e, []cpm.CellKind{Dark, Light}, grid.Coord{w / 2, h / 2}, radius, side); err != nil {
		return err
	}
	return b.Attach(
		constraint.Descriptor{Type: constraint.AdhesionName, Params: constraint.Params{
			"J": [][]float64{
				{0, 16, 16},
				{16, 2, 11},
				{16, 11, 14},
			},
		}},
		constraint.Descriptor{Type: constraint.VolumeName, Params: constraint.Params{
			"LAMBDA_V": []float64{0, 2, 2},
			"V":        []float64{0, vol, vol},
		}},
		constraint.Descriptor{Type: constraint.PerimeterName, Params: constraint.Params{
			"LAMBDA_P": []float64{0, 0.2, 0.2},
			"P":        []float64{0, 2 * vol, 2 * vol},
		}},
		constraint.Descriptor{Type: constraint.VolumeRangeName, Params: constraint.Params{
			"VRANGE_MIN": []int{0, 4, 4},
			"VRANGE_MAX": []int{0, int(3 * vol), int(3 * vol)},
		}},
	)
}

func init() {
	cpmsim.Register(Scenario())
}
