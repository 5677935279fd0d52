package grid

// Field is a scalar concentration grid, e.g. a chemokine read by chemotaxis.
type Field = Grid[float64]

// NewField allocates a zero field with the given layout.
func NewField(enc *Encoding) *Field { return New[float64](enc) }

// Diffuse replaces every pixel with the weighted mean of itself (weight
// retain) and its Moore neighbors (weight 1 each). Clipped boundaries simply
// contribute fewer neighbors. scratch must have length Span or be nil.
func Diffuse(f *Field, retain float64, scratch []float64) []float64 {
	if len(scratch) != len(f.data) {
		scratch = make([]float64, len(f.data))
	}
	nb := make([]Index, 0, 26)
	for i := range f.Indices() {
		nb = f.Neighbors(i, nb[:0])
		sum := retain * f.data[i]
		weight := retain
		for _, j := range nb {
			sum += f.data[j]
			weight++
		}
		if weight > 0 {
			scratch[i] = sum / weight
		}
	}
	f.data, scratch = scratch, f.data
	return scratch
}

// Scale multiplies every pixel by factor, typically a decay in (0, 1].
func Scale(f *Field, factor float64) {
	for i := range f.Indices() {
		f.data[i] *= factor
	}
}
