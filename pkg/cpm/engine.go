package cpm

import (
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"

	"cellpotts/pkg/core"
	"cellpotts/pkg/dice"
	"cellpotts/pkg/grid"
)

type cell struct {
	kind   CellKind
	volume int
}

// Counters tallies copy attempts between distinct cells and how many of
// them were accepted.
type Counters struct {
	Attempts uint64
	Accepted uint64
}

// Engine owns the grid, the border sampler and all cell bookkeeping. It is
// not safe for concurrent use; independent engines share nothing.
type Engine struct {
	cfg    Config
	grid   *grid.Grid[CellID]
	border *dice.Set[grid.Index]
	rng    *core.RNG

	cells  map[CellID]*cell
	lastID CellID
	maxID  CellID

	constraints []Constraint
	soft        []SoftConstraint
	hard        []HardConstraint
	onPixel     []PixelListener
	onStep      []StepListener

	cache    map[string]any
	time     int
	counters Counters

	nb  []grid.Index
	nb2 []grid.Index
}

// New builds an empty engine. A nil rng is created from cfg.Seed, drawing a
// random seed when that is zero.
func New(cfg Config, rng *core.RNG) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	enc, err := grid.NewEncoding(cfg.Extents, cfg.Torus)
	if err != nil {
		return nil, fmt.Errorf("cpm: build grid: %w", err)
	}
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			if seed, err = core.NewSeed(); err != nil {
				return nil, err
			}
		}
		rng = core.NewRNG(seed)
	}
	maxID := cfg.MaxCellID
	if maxID == 0 {
		maxID = math.MaxUint32
	}
	return &Engine{
		cfg:    cfg,
		grid:   grid.New[CellID](enc),
		border: dice.New[grid.Index](),
		rng:    rng,
		cells:  make(map[CellID]*cell),
		maxID:  maxID,
		cache:  make(map[string]any),
		nb:     make([]grid.Index, 0, 26),
		nb2:    make([]grid.Index, 0, 26),
	}, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Encoding returns the grid layout.
func (e *Engine) Encoding() *grid.Encoding { return e.grid.Encoding }

// RNG returns the generator shared by the engine and its constraints.
func (e *Engine) RNG() *core.RNG { return e.rng }

// Seed reports the seed of the shared generator.
func (e *Engine) Seed() int64 { return e.rng.Seed() }

// Kinds returns the number of cell kinds including the background.
func (e *Engine) Kinds() int { return e.cfg.Kinds }

// Time returns the number of completed Monte Carlo steps.
func (e *Engine) Time() int { return e.time }

// Temperature returns the current simulation temperature.
func (e *Engine) Temperature() float64 { return e.cfg.Temperature }

// SetTemperature changes the temperature used by subsequent steps.
func (e *Engine) SetTemperature(t float64) error {
	if !(t > 0) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: temperature %v must be positive and finite", ErrInvalidConfig, t)
	}
	e.cfg.Temperature = t
	return nil
}

// Counters returns the cumulative attempt statistics.
func (e *Engine) Counters() Counters { return e.counters }

// NewCell mints a cell of the given kind with volume 0.
func (e *Engine) NewCell(kind CellKind) (CellID, error) {
	if kind == BackgroundKind || int(kind) >= e.cfg.Kinds {
		return Background, fmt.Errorf("%w: %d (kinds=%d)", ErrInvalidKind, kind, e.cfg.Kinds)
	}
	if uint64(len(e.cells)) >= uint64(e.maxID) {
		return Background, fmt.Errorf("%w: %d ids in use", ErrTooManyCells, len(e.cells))
	}
	id := e.lastID
	for {
		if id >= e.maxID {
			id = 1
		} else {
			id++
		}
		if _, live := e.cells[id]; !live {
			break
		}
	}
	e.lastID = id
	e.cells[id] = &cell{kind: kind}
	return id, nil
}

// KindOf returns the kind of a live cell. The background reports
// BackgroundKind.
func (e *Engine) KindOf(id CellID) (CellKind, bool) {
	if id == Background {
		return BackgroundKind, true
	}
	c, ok := e.cells[id]
	if !ok {
		return BackgroundKind, false
	}
	return c.kind, true
}

// VolumeOf returns the pixel count of a live cell. The background is not
// tracked.
func (e *Engine) VolumeOf(id CellID) (int, bool) {
	c, ok := e.cells[id]
	if !ok {
		return 0, false
	}
	return c.volume, true
}

// CellIDs returns the live cells in ascending order.
func (e *Engine) CellIDs() []CellID {
	return slices.Sorted(maps.Keys(e.cells))
}

// CellIDAt returns the owner of pixel i.
func (e *Engine) CellIDAt(i grid.Index) CellID { return e.grid.At(i) }

// CellIDAtCoord returns the owner of the pixel at c.
func (e *Engine) CellIDAtCoord(c grid.Coord) (CellID, error) {
	if !e.grid.Contains(c) {
		return Background, fmt.Errorf("%w: %v", ErrOutOfBounds, c)
	}
	return e.grid.AtCoord(c), nil
}

// SetCellIDAt assigns the pixel at c directly, bypassing constraints but
// keeping volumes, borders and constraint state consistent.
func (e *Engine) SetCellIDAt(c grid.Coord, id CellID) error {
	if !e.grid.Contains(c) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, c)
	}
	if id != Background {
		if _, ok := e.cells[id]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownCell, id)
		}
	}
	e.setPixel(e.grid.ToIndex(c), id)
	e.invalidate()
	return nil
}

// Pixels yields every pixel with its owner, optionally skipping the
// background.
func (e *Engine) Pixels(nonBackground bool) iter.Seq2[grid.Index, CellID] {
	return func(yield func(grid.Index, CellID) bool) {
		for i := range e.grid.Indices() {
			id := e.grid.At(i)
			if nonBackground && id == Background {
				continue
			}
			if !yield(i, id) {
				return
			}
		}
	}
}

// BorderPixels returns a copy of the pixels currently adjacent to a pixel
// of a different owner.
func (e *Engine) BorderPixels() []grid.Index {
	return slices.Clone(e.border.Elements())
}

// IsBorder reports whether pixel i is tracked as a border pixel.
func (e *Engine) IsBorder(i grid.Index) bool { return e.border.Contains(i) }

// Cached memoises compute under key. The cache is dropped once per step,
// after the last copy attempt, and by every direct SetCellIDAt. Copies
// accepted within a step leave it untouched.
func (e *Engine) Cached(key string, compute func() any) any {
	if v, ok := e.cache[key]; ok {
		return v
	}
	v := compute()
	e.cache[key] = v
	return v
}

func (e *Engine) invalidate() {
	if len(e.cache) != 0 {
		clear(e.cache)
	}
}

// setPixel is the single mutation path of the grid.
func (e *Engine) setPixel(i grid.Index, id CellID) {
	old := e.grid.At(i)
	if old == id {
		return
	}
	if old != Background {
		c := e.cells[old]
		c.volume--
		if c.volume <= 0 {
			delete(e.cells, old)
		}
	}
	if id != Background {
		e.cells[id].volume++
	}
	e.grid.Set(i, id)

	e.nb = e.grid.Neighbors(i, e.nb[:0])
	e.refreshBorder(i)
	for _, n := range e.nb {
		e.refreshBorder(n)
	}

	for _, l := range e.onPixel {
		l.PixelChanged(e, i, old, id)
	}
}

func (e *Engine) refreshBorder(i grid.Index) {
	id := e.grid.At(i)
	e.nb2 = e.grid.Neighbors(i, e.nb2[:0])
	for _, n := range e.nb2 {
		if e.grid.At(n) != id {
			e.border.Insert(i)
			return
		}
	}
	e.border.Remove(i)
}
