package stats

import (
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

// Components partitions pixels into groups connected through Moore
// neighbors. Groups are returned in the order their first pixel appears.
func Components(enc *grid.Encoding, pixels []grid.Index) [][]grid.Index {
	member := make(map[grid.Index]bool, len(pixels))
	for _, p := range pixels {
		member[p] = false
	}
	var (
		out   [][]grid.Index
		stack []grid.Index
		nb    = make([]grid.Index, 0, 26)
	)
	for _, p := range pixels {
		if member[p] {
			continue
		}
		member[p] = true
		var group []grid.Index
		stack = append(stack[:0], p)
		for len(stack) > 0 {
			q := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			group = append(group, q)
			nb = enc.Neighbors(q, nb[:0])
			for _, n := range nb {
				seen, ok := member[n]
				if ok && !seen {
					member[n] = true
					stack = append(stack, n)
				}
			}
		}
		out = append(out, group)
	}
	return out
}

// CountComponents is len(Components(enc, pixels)).
func CountComponents(enc *grid.Encoding, pixels []grid.Index) int {
	return len(Components(enc, pixels))
}

// ConnectedComponents splits every live cell into its connected pieces.
func ConnectedComponents(v cpm.View) map[cpm.CellID][][]grid.Index {
	enc := v.Encoding()
	out := make(map[cpm.CellID][][]grid.Index)
	for id, px := range CachedCellPixels(v) {
		out[id] = Components(enc, px)
	}
	return out
}

// CachedConnectedComponents is ConnectedComponents memoised on the view.
func CachedConnectedComponents(v cpm.View) map[cpm.CellID][][]grid.Index {
	return cpm.CachedStat(v, keyCellComponents, ConnectedComponents)
}
