// Package cpm implements the Cellular Potts Model engine: cell bookkeeping
// over a packed grid, the Metropolis copy-attempt loop and dispatch to the
// attached energy and rule constraints.
package cpm

import (
	"iter"

	"cellpotts/pkg/core"
	"cellpotts/pkg/grid"
)

// CellID identifies one living cell. Background is never a cell.
type CellID uint32

// CellKind classifies cells sharing constraint parameters.
type CellKind uint8

const (
	// Background is the CellID of the medium.
	Background CellID = 0
	// BackgroundKind is the kind of the medium; parameter arrays carry it at
	// index 0.
	BackgroundKind CellKind = 0
)

// Capability tags how the engine consumes a constraint.
type Capability uint8

const (
	// Soft constraints contribute an energy delta.
	Soft Capability = iota + 1
	// Hard constraints veto copy attempts.
	Hard
)

func (c Capability) String() string {
	switch c {
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// Constraint is the common part of every constraint. Capability decides
// whether the engine expects a SoftConstraint or a HardConstraint.
type Constraint interface {
	Name() string
	Capability() Capability
}

// SoftConstraint returns the energy change of copying the cell at src into
// tgt. Contributions of all soft constraints are summed.
type SoftConstraint interface {
	Constraint
	DeltaH(v View, src, tgt grid.Index, srcID, tgtID CellID) float64
}

// HardConstraint reports whether copying src into tgt is admissible.
type HardConstraint interface {
	Constraint
	Fulfilled(v View, src, tgt grid.Index, srcID, tgtID CellID) bool
}

// PixelListener is notified after every pixel reassignment, including
// direct seeding. Cell bookkeeping is already updated: if oldID lost its
// last pixel it is no longer alive.
type PixelListener interface {
	PixelChanged(v View, i grid.Index, oldID, newID CellID)
}

// StepListener is notified once at the end of every Monte Carlo step.
type StepListener interface {
	StepComplete(v View)
}

// Validator checks parameter shapes against the engine, typically the
// number of cell kinds (background included), when the constraint is
// attached.
type Validator interface {
	Validate(v View) error
}

// Initializer builds incremental state from the grid as it is at attach
// time.
type Initializer interface {
	Init(v View)
}

// View is the read-only handle constraints and statistics receive on every
// call. The engine implements it; constraints must not keep it between
// calls or mutate engine state through it.
type View interface {
	Encoding() *grid.Encoding
	CellIDAt(i grid.Index) CellID
	KindOf(id CellID) (CellKind, bool)
	VolumeOf(id CellID) (int, bool)
	Kinds() int
	CellIDs() []CellID
	Pixels(nonBackground bool) iter.Seq2[grid.Index, CellID]
	Time() int
	RNG() *core.RNG
	Cached(key string, compute func() any) any
}

// KindOrBackground returns the kind of id, or BackgroundKind when id is the
// medium or no longer alive.
func KindOrBackground(v View, id CellID) CellKind {
	if id == Background {
		return BackgroundKind
	}
	k, _ := v.KindOf(id)
	return k
}

// CachedStat memoises compute under key until the current step completes
// or a pixel is set directly. Copies accepted mid-step do not refresh it.
func CachedStat[T any](v View, key string, compute func(View) T) T {
	return v.Cached(key, func() any { return compute(v) }).(T)
}
