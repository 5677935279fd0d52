package core

// Frame is a row-major 2D byte image of a simulation, one value per pixel.
type Frame struct {
	W, H int
	data []uint8
}

// NewFrame allocates a frame with the given dimensions.
func NewFrame(w, h int) *Frame {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Frame{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (f *Frame) Cells() []uint8 { return f.data }

// Index returns the linear slice index for coordinates (x, y).
func (f *Frame) Index(x, y int) int { return y*f.W + x }

// Set writes v at (x, y).
func (f *Frame) Set(x, y int, v uint8) { f.data[y*f.W+x] = v }

// Clear fills the frame with zeros.
func (f *Frame) Clear() { clear(f.data) }
