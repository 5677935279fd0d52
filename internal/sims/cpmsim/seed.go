package cpmsim

import (
	"errors"
	"fmt"
	"math"

	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// ErrNoRoom is returned when a seeding helper finds no free background.
var ErrNoRoom = errors.New("cpmsim: no free space to seed")

// wrapCoord maps c into the grid, wrapping periodic dimensions. It reports
// false when c falls off a clipped edge.
func wrapCoord(enc *grid.Encoding, c grid.Coord) (grid.Coord, bool) {
	for d := 0; d < enc.Dims(); d++ {
		ext := enc.Extent(d)
		if c[d] >= 0 && c[d] < ext {
			continue
		}
		if !enc.Torus(d) {
			return c, false
		}
		c[d] = ((c[d] % ext) + ext) % ext
	}
	return c, true
}

// SeedDisk creates a cell of kind covering the free background pixels
// within radius of center.
func SeedDisk(e *cpm.Engine, kind cpm.CellKind, center grid.Coord, radius float64) (cpm.CellID, error) {
	enc := e.Encoding()
	r := int(math.Ceil(radius))
	var free []grid.Coord
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if float64(dx*dx+dy*dy) > radius*radius {
				continue
			}
			free = appendFree(e, enc, free, grid.Coord{center[0] + dx, center[1] + dy})
		}
	}
	if len(free) == 0 {
		return cpm.Background, fmt.Errorf("%w: disk at %v", ErrNoRoom, center)
	}
	return paintCell(e, kind, free)
}

func appendFree(e *cpm.Engine, enc *grid.Encoding, free []grid.Coord, c grid.Coord) []grid.Coord {
	c, ok := wrapCoord(enc, c)
	if !ok {
		return free
	}
	if cur, _ := e.CellIDAtCoord(c); cur != cpm.Background {
		return free
	}
	return append(free, c)
}

func paintCell(e *cpm.Engine, kind cpm.CellKind, coords []grid.Coord) (cpm.CellID, error) {
	id, err := e.NewCell(kind)
	if err != nil {
		return cpm.Background, err
	}
	for _, c := range coords {
		if err := e.SetCellIDAt(c, id); err != nil {
			return cpm.Background, err
		}
	}
	return id, nil
}

// SeedRandom places n disks of kind at random free centers.
func SeedRandom(e *cpm.Engine, kind cpm.CellKind, n int, radius float64) ([]cpm.CellID, error) {
	enc := e.Encoding()
	rng := e.RNG()
	ids := make([]cpm.CellID, 0, n)
	for len(ids) < n {
		placed := false
		for try := 0; try < 1000; try++ {
			c := grid.Coord{rng.IntN(enc.Extent(0)), rng.IntN(enc.Extent(1))}
			if cur, _ := e.CellIDAtCoord(c); cur != cpm.Background {
				continue
			}
			id, err := SeedDisk(e, kind, c, radius)
			if err != nil {
				return ids, err
			}
			ids = append(ids, id)
			placed = true
			break
		}
		if !placed {
			return ids, fmt.Errorf("%w: placed %d of %d cells", ErrNoRoom, len(ids), n)
		}
	}
	return ids, nil
}

// SeedBlob tiles a disk of the given radius with square cells of side
// size, drawing each cell's kind uniformly from kinds.
func SeedBlob(e *cpm.Engine, kinds []cpm.CellKind, center grid.Coord, radius float64, side int) ([]cpm.CellID, error) {
	if side < 1 || len(kinds) == 0 {
		return nil, fmt.Errorf("cpmsim: blob needs a positive side and at least one kind")
	}
	enc := e.Encoding()
	rng := e.RNG()
	r := int(math.Ceil(radius))
	var ids []cpm.CellID
	for x0 := -r; x0 <= r; x0 += side {
		for y0 := -r; y0 <= r; y0 += side {
			cx, cy := float64(x0)+float64(side)/2, float64(y0)+float64(side)/2
			if cx*cx+cy*cy > radius*radius {
				continue
			}
			kind := kinds[rng.IntN(len(kinds))]
			var free []grid.Coord
			for dx := 0; dx < side; dx++ {
				for dy := 0; dy < side; dy++ {
					free = appendFree(e, enc, free, grid.Coord{center[0] + x0 + dx, center[1] + y0 + dy})
				}
			}
			if len(free) == 0 {
				continue
			}
			id, err := paintCell(e, kind, free)
			if err != nil {
				return ids, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SeedFrame creates one cell of kind covering a border of the given
// thickness around a 2D grid.
func SeedFrame(e *cpm.Engine, kind cpm.CellKind, thickness int) (cpm.CellID, error) {
	id, err := e.NewCell(kind)
	if err != nil {
		return cpm.Background, err
	}
	w, h := e.Encoding().Extent(0), e.Encoding().Extent(1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if x >= thickness && x < w-thickness && y >= thickness && y < h-thickness {
				continue
			}
			if err := e.SetCellIDAt(grid.Coord{x, y}, id); err != nil {
				return cpm.Background, err
			}
		}
	}
	return id, nil
}
