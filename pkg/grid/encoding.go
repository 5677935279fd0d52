// Package grid maps array coordinates onto packed scalar indices and
// enumerates pixel neighborhoods on 2D and 3D lattices with optional
// periodic boundaries.
package grid

import (
	"errors"
	"fmt"
	"iter"
	"math/bits"
)

// Index is a packed pixel coordinate. Each dimension occupies a fixed bit
// field; the last dimension holds the lowest bits.
type Index uint32

// Coord is an array coordinate. 2D grids leave the third component at zero.
type Coord [3]int

// indexWidth is the number of bits available to a packed Index.
const indexWidth = 32

var (
	// ErrGridTooLarge reports extents whose bit fields do not fit an Index.
	ErrGridTooLarge = errors.New("grid: packed index exceeds 32 bits")
	// ErrInvalidExtents reports an unsupported dimensionality or extent.
	ErrInvalidExtents = errors.New("grid: invalid extents")
)

// Encoding is the fixed bit layout of a grid. It is immutable after
// construction and safe to share between grids of the same shape.
//
// Invariants: dims is 2 or 3; every extent is >= 1; the per-dimension bit
// widths sum to at most 32; ToCoord(ToIndex(c)) == c for every c inside the
// extents.
type Encoding struct {
	dims    int
	extents Coord
	torus   [3]bool

	bits   [3]uint
	shift  [3]uint
	mask   [3]Index
	stride [3]int
	// wrap is the packed distance between the first and last pixel along a
	// dimension; adding or subtracting it crosses a periodic boundary.
	wrap [3]int

	size int
	span int
}

// NewEncoding derives the bit layout for the given extents. A nil torus
// means every dimension wraps.
func NewEncoding(extents []int, torus []bool) (*Encoding, error) {
	if len(extents) != 2 && len(extents) != 3 {
		return nil, fmt.Errorf("%w: need 2 or 3 extents, got %d", ErrInvalidExtents, len(extents))
	}
	if torus != nil && len(torus) != len(extents) {
		return nil, fmt.Errorf("%w: torus has %d flags for %d dimensions", ErrInvalidExtents, len(torus), len(extents))
	}
	e := &Encoding{dims: len(extents), size: 1}
	total := uint(0)
	for d, ext := range extents {
		if ext < 1 {
			return nil, fmt.Errorf("%w: extent %d of dimension %d", ErrInvalidExtents, ext, d)
		}
		e.extents[d] = ext
		e.torus[d] = torus == nil || torus[d]
		e.bits[d] = max(uint(bits.Len(uint(ext-1))), 1)
		total += e.bits[d]
		e.size *= ext
	}
	if total > indexWidth {
		return nil, fmt.Errorf("%w: extents %v need %d bits", ErrGridTooLarge, extents, total)
	}
	shift := uint(0)
	for d := e.dims - 1; d >= 0; d-- {
		e.shift[d] = shift
		e.mask[d] = Index(1)<<e.bits[d] - 1
		e.stride[d] = 1 << shift
		e.wrap[d] = (e.extents[d] - 1) * e.stride[d]
		shift += e.bits[d]
	}
	var last Coord
	for d := 0; d < e.dims; d++ {
		last[d] = e.extents[d] - 1
	}
	e.span = int(e.ToIndex(last)) + 1
	return e, nil
}

// Dims returns the number of dimensions (2 or 3).
func (e *Encoding) Dims() int { return e.dims }

// Extents returns the per-dimension size.
func (e *Encoding) Extents() []int { return append([]int(nil), e.extents[:e.dims]...) }

// Extent returns the size of dimension d.
func (e *Encoding) Extent(d int) int { return e.extents[d] }

// Torus reports whether dimension d wraps around.
func (e *Encoding) Torus(d int) bool { return e.torus[d] }

// Size returns the number of pixels on the grid.
func (e *Encoding) Size() int { return e.size }

// Span returns the length a buffer addressed by Index must have. It exceeds
// Size when an extent is not a power of two.
func (e *Encoding) Span() int { return e.span }

// ToIndex packs a coordinate. The coordinate must lie inside the extents.
func (e *Encoding) ToIndex(c Coord) Index {
	var i Index
	for d := 0; d < e.dims; d++ {
		i |= Index(c[d]) << e.shift[d]
	}
	return i
}

// ToCoord unpacks an index.
func (e *Encoding) ToCoord(i Index) Coord {
	var c Coord
	for d := 0; d < e.dims; d++ {
		c[d] = int((i >> e.shift[d]) & e.mask[d])
	}
	return c
}

// Component extracts the coordinate of dimension d without unpacking the rest.
func (e *Encoding) Component(i Index, d int) int {
	return int((i >> e.shift[d]) & e.mask[d])
}

// Contains reports whether the coordinate lies inside the extents.
func (e *Encoding) Contains(c Coord) bool {
	for d := 0; d < e.dims; d++ {
		if c[d] < 0 || c[d] >= e.extents[d] {
			return false
		}
	}
	for d := e.dims; d < 3; d++ {
		if c[d] != 0 {
			return false
		}
	}
	return true
}

// Indices yields every pixel in coordinate order, first dimension outermost.
func (e *Encoding) Indices() iter.Seq[Index] {
	return func(yield func(Index) bool) {
		zExt := 1
		if e.dims == 3 {
			zExt = e.extents[2]
		}
		for x := 0; x < e.extents[0]; x++ {
			for y := 0; y < e.extents[1]; y++ {
				for z := 0; z < zExt; z++ {
					if !yield(e.ToIndex(Coord{x, y, z})) {
						return
					}
				}
			}
		}
	}
}
