package grid

// step is one candidate move along a single axis.
type step struct {
	off   int
	delta int8
}

// axisSteps lists the admissible moves of pixel i along dimension d, always
// including the zero move. Crossing a boundary adds the precomputed wrap
// distance on a torus and is dropped otherwise.
func (e *Encoding) axisSteps(i Index, d int, out *[3]step) int {
	c := e.Component(i, d)
	n := 0
	switch {
	case c > 0:
		out[n] = step{off: -e.stride[d], delta: -1}
		n++
	case e.torus[d]:
		out[n] = step{off: e.wrap[d], delta: -1}
		n++
	}
	out[n] = step{}
	n++
	switch {
	case c < e.extents[d]-1:
		out[n] = step{off: e.stride[d], delta: 1}
		n++
	case e.torus[d]:
		out[n] = step{off: -e.wrap[d], delta: 1}
		n++
	}
	return n
}

// Neighbors appends the Moore neighborhood of i (8 pixels in 2D, 26 in 3D
// when nothing is clipped) to buf and returns the extended slice.
func (e *Encoding) Neighbors(i Index, buf []Index) []Index {
	var s [3][3]step
	var n [3]int
	for d := 0; d < e.dims; d++ {
		n[d] = e.axisSteps(i, d, &s[d])
	}
	if e.dims == 2 {
		for a := 0; a < n[0]; a++ {
			for b := 0; b < n[1]; b++ {
				if s[0][a].delta == 0 && s[1][b].delta == 0 {
					continue
				}
				buf = append(buf, Index(int(i)+s[0][a].off+s[1][b].off))
			}
		}
		return buf
	}
	for a := 0; a < n[0]; a++ {
		for b := 0; b < n[1]; b++ {
			for c := 0; c < n[2]; c++ {
				if s[0][a].delta == 0 && s[1][b].delta == 0 && s[2][c].delta == 0 {
					continue
				}
				buf = append(buf, Index(int(i)+s[0][a].off+s[1][b].off+s[2][c].off))
			}
		}
	}
	return buf
}

// NeighborsVonNeumann appends the face-sharing neighbors of i (4 in 2D, 6 in
// 3D when nothing is clipped) to buf.
func (e *Encoding) NeighborsVonNeumann(i Index, buf []Index) []Index {
	var s [3]step
	for d := 0; d < e.dims; d++ {
		n := e.axisSteps(i, d, &s)
		for k := 0; k < n; k++ {
			if s[k].delta != 0 {
				buf = append(buf, Index(int(i)+s[k].off))
			}
		}
	}
	return buf
}

// Displacement returns the per-dimension offset from a to b, taking the
// shorter way around periodic dimensions.
func (e *Encoding) Displacement(a, b Index) Coord {
	var out Coord
	for d := 0; d < e.dims; d++ {
		delta := e.Component(b, d) - e.Component(a, d)
		if e.torus[d] {
			half := e.extents[d] / 2
			if delta > half {
				delta -= e.extents[d]
			} else if delta < -half {
				delta += e.extents[d]
			}
		}
		out[d] = delta
	}
	return out
}
