package constraint

import (
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/dice"
	"cellpotts/pkg/grid"
	"cellpotts/pkg/stats"
)

// cellBorders tracks, per cell, the pixels touching another owner. The
// connectivity constraints flood fill these subsets instead of whole cells.
type cellBorders struct {
	sets map[cpm.CellID]*dice.Set[grid.Index]
	nb   []grid.Index
	nb2  []grid.Index
	buf  []grid.Index
}

func newCellBorders() cellBorders {
	return cellBorders{sets: make(map[cpm.CellID]*dice.Set[grid.Index])}
}

func (b *cellBorders) init(v cpm.View) {
	clear(b.sets)
	for i := range v.Pixels(true) {
		b.refresh(v, i)
	}
}

func (b *cellBorders) changed(v cpm.View, i grid.Index, oldID cpm.CellID) {
	if s := b.sets[oldID]; s != nil {
		s.Remove(i)
	}
	b.refresh(v, i)
	b.nb = v.Encoding().Neighbors(i, b.nb[:0])
	for _, n := range b.nb {
		b.refresh(v, n)
	}
	if oldID != cpm.Background {
		if _, alive := v.VolumeOf(oldID); !alive {
			delete(b.sets, oldID)
		}
	}
}

func (b *cellBorders) refresh(v cpm.View, i grid.Index) {
	id := v.CellIDAt(i)
	if id == cpm.Background {
		return
	}
	b.nb2 = v.Encoding().Neighbors(i, b.nb2[:0])
	for _, n := range b.nb2 {
		if v.CellIDAt(n) != id {
			s := b.sets[id]
			if s == nil {
				s = dice.New[grid.Index]()
				b.sets[id] = s
			}
			s.Insert(i)
			return
		}
	}
	if s := b.sets[id]; s != nil {
		s.Remove(i)
	}
}

// locallyConnected reports whether removing tgt from id certainly keeps the
// cell in one piece: with at most one face neighbor outside the cell the
// remaining neighbors stay joined around tgt.
func (b *cellBorders) locallyConnected(v cpm.View, tgt grid.Index, id cpm.CellID) bool {
	b.nb = v.Encoding().NeighborsVonNeumann(tgt, b.nb[:0])
	outside := 0
	for _, n := range b.nb {
		if v.CellIDAt(n) != id {
			outside++
		}
	}
	return outside < 2
}

// split returns how many components the border of id has now and would have
// once tgt is given away.
func (b *cellBorders) split(v cpm.View, tgt grid.Index, id cpm.CellID) (before, after int) {
	s := b.sets[id]
	if s == nil {
		return 0, 0
	}
	enc := v.Encoding()
	before = stats.CountComponents(enc, s.Elements())

	b.buf = b.buf[:0]
	for _, p := range s.Elements() {
		if p != tgt {
			b.buf = append(b.buf, p)
		}
	}
	b.nb = enc.Neighbors(tgt, b.nb[:0])
	for _, n := range b.nb {
		if v.CellIDAt(n) == id && !s.Contains(n) {
			b.buf = append(b.buf, n)
		}
	}
	after = stats.CountComponents(enc, b.buf)
	return before, after
}
