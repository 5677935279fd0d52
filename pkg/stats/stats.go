// Package stats derives per-cell statistics from an engine view. Results
// are recomputed from the grid; the Cached variants memoise them until the
// grid next changes.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

const (
	keyPixels         = "stats.pixels"
	keyCentroids      = "stats.centroids"
	keyCentroidsTorus = "stats.centroids.torus"
	keyCellComponents = "stats.components"
)

// CellPixels groups the pixels of every live cell.
func CellPixels(v cpm.View) map[cpm.CellID][]grid.Index {
	out := make(map[cpm.CellID][]grid.Index)
	for i, id := range v.Pixels(true) {
		out[id] = append(out[id], i)
	}
	return out
}

// CachedCellPixels is CellPixels memoised on the view.
func CachedCellPixels(v cpm.View) map[cpm.CellID][]grid.Index {
	return cpm.CachedStat(v, keyPixels, CellPixels)
}

// Centroids returns the plain coordinate mean of every cell. Cells wrapping
// around a torus boundary get a centroid between their halves.
func Centroids(v cpm.View) map[cpm.CellID][]float64 {
	enc := v.Encoding()
	out := make(map[cpm.CellID][]float64)
	for id, px := range CachedCellPixels(v) {
		sum := make([]float64, enc.Dims())
		p := make([]float64, enc.Dims())
		for _, i := range px {
			c := enc.ToCoord(i)
			for d := range p {
				p[d] = float64(c[d])
			}
			floats.Add(sum, p)
		}
		floats.Scale(1/float64(len(px)), sum)
		out[id] = sum
	}
	return out
}

// CachedCentroids is Centroids memoised on the view.
func CachedCentroids(v cpm.View) map[cpm.CellID][]float64 {
	return cpm.CachedStat(v, keyCentroids, Centroids)
}

// CentroidsWithTorusCorrection unwraps every cell around its first pixel
// before averaging, so cells crossing a periodic boundary get a centroid
// inside their body. Results are wrapped back into the grid.
func CentroidsWithTorusCorrection(v cpm.View) map[cpm.CellID][]float64 {
	enc := v.Encoding()
	dims := enc.Dims()
	out := make(map[cpm.CellID][]float64)
	for id, px := range CachedCellPixels(v) {
		ref := enc.ToCoord(px[0])
		sum := make([]float64, dims)
		p := make([]float64, dims)
		for _, i := range px {
			dv := enc.Displacement(px[0], i)
			for d := range p {
				p[d] = float64(ref[d] + dv[d])
			}
			floats.Add(sum, p)
		}
		floats.Scale(1/float64(len(px)), sum)
		for d := range sum {
			if enc.Torus(d) {
				sum[d] = wrap(sum[d], float64(enc.Extent(d)))
			}
		}
		out[id] = sum
	}
	return out
}

// CachedCentroidsWithTorusCorrection is CentroidsWithTorusCorrection
// memoised on the view.
func CachedCentroidsWithTorusCorrection(v cpm.View) map[cpm.CellID][]float64 {
	return cpm.CachedStat(v, keyCentroidsTorus, CentroidsWithTorusCorrection)
}

// DisplacementOf returns b-a for two points in continuous grid coordinates,
// taking the shortest path along periodic dimensions.
func DisplacementOf(enc *grid.Encoding, a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.SubTo(out, b, a)
	for d := range out {
		if !enc.Torus(d) {
			continue
		}
		ext := float64(enc.Extent(d))
		if out[d] > ext/2 {
			out[d] -= ext
		} else if out[d] < -ext/2 {
			out[d] += ext
		}
	}
	return out
}

func wrap(x, ext float64) float64 {
	x = math.Mod(x, ext)
	if x < 0 {
		x += ext
	}
	return x
}
