package render

import "image/color"

// Grayscale returns a 256 entry ramp used when a simulation brings no
// palette of its own.
func Grayscale() []color.RGBA {
	p := make([]color.RGBA, 256)
	for i := range p {
		p[i] = color.RGBA{R: uint8(i), G: uint8(i), B: uint8(i), A: 255}
	}
	return p
}
