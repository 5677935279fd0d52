package cpm

import "errors"

var (
	// ErrInvalidConfig reports an unusable engine configuration.
	ErrInvalidConfig = errors.New("cpm: invalid config")
	// ErrInvalidKind reports a cell kind outside [1, Kinds).
	ErrInvalidKind = errors.New("cpm: invalid cell kind")
	// ErrUnknownCell reports a CellID that is not alive.
	ErrUnknownCell = errors.New("cpm: unknown cell")
	// ErrTooManyCells reports that every CellID below the bound is alive.
	ErrTooManyCells = errors.New("cpm: too many live cells")
	// ErrCapability reports a constraint whose declared capability does not
	// match the methods it implements.
	ErrCapability = errors.New("cpm: constraint capability mismatch")
	// ErrOutOfBounds reports a coordinate outside the grid.
	ErrOutOfBounds = errors.New("cpm: coordinate outside grid")
)
