package cpmsim

import (
	"image/color"

	"cellpotts/internal/core"
	"cellpotts/pkg/constraint"
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
	"cellpotts/pkg/stats"
)

const (
	displayKindMask  = 0x7f
	displayBorderBit = 0x80
)

var defaultColors = []color.RGBA{
	{R: 18, G: 18, B: 24, A: 255},
	{R: 214, G: 96, B: 77, A: 255},
	{R: 80, G: 156, B: 214, A: 255},
	{R: 120, G: 120, B: 128, A: 255},
	{R: 236, G: 196, B: 84, A: 255},
	{R: 112, G: 188, B: 112, A: 255},
}

// Palette exposes the color palette used for rendering the display frame.
func (s *Sim) Palette() []color.RGBA { return s.palette }

func buildPalette(colors []color.RGBA) []color.RGBA {
	if len(colors) == 0 {
		colors = defaultColors
	}
	palette := make([]color.RGBA, 256)
	for i := range palette {
		base := colors[(i&displayKindMask)%len(colors)]
		if i&displayBorderBit != 0 {
			base = shade(base, 0.55)
		}
		palette[i] = base
	}
	return palette
}

func shade(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R)*f + 0.5),
		G: uint8(float64(c.G)*f + 0.5),
		B: uint8(float64(c.B)*f + 0.5),
		A: c.A,
	}
}

func encodeDisplayValue(kind cpm.CellKind, border bool) uint8 {
	v := uint8(kind) & displayKindMask
	if border {
		v |= displayBorderBit
	}
	return v
}

func (s *Sim) rebuildDisplay() {
	e := s.engine
	enc := e.Encoding()
	for y := 0; y < s.frame.H; y++ {
		for x := 0; x < s.frame.W; x++ {
			i := enc.ToIndex(grid.Coord{x, y})
			id := e.CellIDAt(i)
			kind := cpm.KindOrBackground(e, id)
			s.frame.Set(x, y, encodeDisplayValue(kind, id != cpm.Background && e.IsBorder(i)))
		}
	}
}

// FieldMask returns the displayed field scaled to [0, 1] in row-major
// order, or nil when the scenario has no field.
func (s *Sim) FieldMask() []float32 {
	if s.field == nil {
		return nil
	}
	total := s.frame.W * s.frame.H
	if len(s.mask) != total {
		s.mask = make([]float32, total)
	}
	hi := 0.0
	for i := range s.field.Indices() {
		if v := s.field.At(i); v > hi {
			hi = v
		}
	}
	for y := 0; y < s.frame.H; y++ {
		for x := 0; x < s.frame.W; x++ {
			v := 0.0
			if hi > 0 {
				v = s.field.AtCoord(grid.Coord{x, y}) / hi
			}
			s.mask[s.frame.Index(x, y)] = float32(v)
		}
	}
	return s.mask
}

// Markers reports centroids of all cells, with directions where a
// Persistence constraint tracks one.
func (s *Sim) Markers() []core.Marker {
	e := s.engine
	persist, hasDir := cpm.ConstraintOf[*constraint.Persistence](e, 0)
	centroids := stats.CachedCentroidsWithTorusCorrection(e)
	out := make([]core.Marker, 0, len(centroids))
	for _, id := range e.CellIDs() {
		c, ok := centroids[id]
		if !ok {
			continue
		}
		m := core.Marker{X: c[0], Y: c[1]}
		if hasDir {
			if d, ok := persist.Direction(id); ok {
				m.DX, m.DY = d[0], d[1]
			}
		}
		out = append(out, m)
	}
	return out
}
