package core

import (
	"fmt"
	"sort"
)

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Sim defines the contract the viewer, the runner and the stream server
// drive. Cells returns the current display frame in row-major order.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64) error
	Step()
	Cells() []uint8
}

// Factory constructs a Sim using an optional configuration map.
type Factory func(cfg map[string]string) (Sim, error)

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}

// Names lists the registered simulations in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(sims))
	for n := range sims {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New looks up name and builds the simulation.
func New(name string, cfg map[string]string) (Sim, error) {
	f, ok := sims[name]
	if !ok {
		return nil, fmt.Errorf("unknown sim %q (have %v)", name, Names())
	}
	return f(cfg)
}

// Marker is a point of interest on the grid with an optional heading.
type Marker struct {
	X, Y   float64
	DX, DY float64
}

// FieldProvider is implemented by simulations that expose a scalar field
// scaled to [0, 1] in row-major order.
type FieldProvider interface {
	FieldMask() []float32
}

// MarkerProvider is implemented by simulations that expose markers.
type MarkerProvider interface {
	Markers() []Marker
}
