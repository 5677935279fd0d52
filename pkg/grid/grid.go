package grid

// Grid stores one value per pixel in a flat buffer addressed by Index.
type Grid[T any] struct {
	*Encoding
	data []T
}

// New allocates a zero-valued grid with the given layout.
func New[T any](enc *Encoding) *Grid[T] {
	return &Grid[T]{Encoding: enc, data: make([]T, enc.Span())}
}

// At returns the value stored at i.
func (g *Grid[T]) At(i Index) T { return g.data[i] }

// Set stores v at i.
func (g *Grid[T]) Set(i Index, v T) { g.data[i] = v }

// AtCoord returns the value stored at c.
func (g *Grid[T]) AtCoord(c Coord) T { return g.data[g.ToIndex(c)] }

// SetCoord stores v at c.
func (g *Grid[T]) SetCoord(c Coord, v T) { g.data[g.ToIndex(c)] = v }

// Data exposes the backing slice. Slots whose packed index falls outside the
// extents are padding and never read by grid methods.
func (g *Grid[T]) Data() []T { return g.data }

// Fill sets every pixel to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.Indices() {
		g.data[i] = v
	}
}
