// Package cpmsim adapts a CPM engine to the core.Sim contract so scenarios
// can be viewed, streamed and run headless through the same registry.
package cpmsim

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"cellpotts/internal/core"
	"cellpotts/pkg/constraint"
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
)

var (
	// ErrNot2D is returned for scenarios configured with a third dimension.
	ErrNot2D = errors.New("cpmsim: display requires a 2D grid")
	// ErrDisplayRange is returned when the grid or kind count does not fit
	// the uint16 frame header or the 7-bit display kind.
	ErrDisplayRange = errors.New("cpmsim: configuration exceeds the display encoding")
)

// Scenario describes how to populate a fresh engine.
type Scenario struct {
	Name   string
	Config cpm.Config
	// Colors holds one color per kind, the medium first.
	Colors []color.RGBA
	// Setup seeds cells and attaches constraints. It runs on every reset.
	Setup func(b *Builder) error
}

// Register adds sc to the simulation registry.
func Register(sc Scenario) {
	core.Register(sc.Name, func(cfg map[string]string) (core.Sim, error) {
		return New(sc, cfg)
	})
}

// Builder is handed to Scenario.Setup on a freshly created engine.
type Builder struct {
	Engine *cpm.Engine

	opts   map[string]string
	params []core.Parameter
	hooks  []func(*cpm.Engine)
	field  *grid.Field
}

// Attach builds and attaches constraint descriptors.
func (b *Builder) Attach(descs ...constraint.Descriptor) error {
	_, err := constraint.Attach(b.Engine, descs...)
	return err
}

// EveryStep runs fn before each Monte Carlo step.
func (b *Builder) EveryStep(fn func(*cpm.Engine)) { b.hooks = append(b.hooks, fn) }

// ShowField exposes f to the viewer overlay.
func (b *Builder) ShowField(f *grid.Field) { b.field = f }

// Int reads an integer scenario option, falling back to def.
func (b *Builder) Int(key, label string, def int) int {
	v := def
	if raw, ok := b.opts[key]; ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			v = parsed
		}
	}
	b.params = append(b.params, core.IntParam(key, label, v))
	return v
}

// Float reads a float scenario option, falling back to def.
func (b *Builder) Float(key, label string, def float64) float64 {
	v := def
	if raw, ok := b.opts[key]; ok {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			v = parsed
		}
	}
	b.params = append(b.params, core.FloatParam(key, label, v))
	return v
}

// Sim runs one scenario on a CPM engine.
type Sim struct {
	sc   Scenario
	cfg  cpm.Config
	opts map[string]string

	engine *cpm.Engine
	frame  *core.Frame
	hooks  []func(*cpm.Engine)
	field  *grid.Field
	params []core.Parameter

	palette []color.RGBA
	mask    []float32
}

// New configures sc with flag-style overrides and performs the first reset.
func New(sc Scenario, cfg map[string]string) (*Sim, error) {
	c := sc.Config.Apply(cfg)
	if len(c.Extents) != 2 {
		return nil, fmt.Errorf("%s: %w", sc.Name, ErrNot2D)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", sc.Name, err)
	}
	if c.Extents[0] > math.MaxUint16 || c.Extents[1] > math.MaxUint16 {
		return nil, fmt.Errorf("%s: %w: extents %v", sc.Name, ErrDisplayRange, c.Extents)
	}
	if c.Kinds > displayKindMask+1 {
		return nil, fmt.Errorf("%s: %w: %d kinds", sc.Name, ErrDisplayRange, c.Kinds)
	}
	s := &Sim{
		sc:      sc,
		cfg:     c,
		opts:    cfg,
		frame:   core.NewFrame(c.Extents[0], c.Extents[1]),
		palette: buildPalette(sc.Colors),
	}
	if err := s.Reset(0); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the scenario identifier.
func (s *Sim) Name() string { return s.sc.Name }

// Size reports the grid dimensions.
func (s *Sim) Size() core.Size { return core.Size{W: s.frame.W, H: s.frame.H} }

// Cells exposes the current display frame.
func (s *Sim) Cells() []uint8 { return s.frame.Cells() }

// Engine exposes the running engine.
func (s *Sim) Engine() *cpm.Engine { return s.engine }

// Field returns the scenario's displayed field, if any.
func (s *Sim) Field() *grid.Field { return s.field }

// Reset rebuilds the engine. A zero seed falls back to the configured seed,
// which itself may be zero for a random one.
func (s *Sim) Reset(seed int64) error {
	cfg := s.cfg
	if seed != 0 {
		cfg.Seed = seed
	}
	e, err := cpm.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", s.sc.Name, err)
	}
	b := &Builder{Engine: e, opts: s.opts}
	if s.sc.Setup != nil {
		if err := s.sc.Setup(b); err != nil {
			return fmt.Errorf("%s setup: %w", s.sc.Name, err)
		}
	}
	s.engine = e
	s.hooks = b.hooks
	s.field = b.field
	s.params = b.params
	s.rebuildDisplay()
	return nil
}

// Step runs the scenario hooks and one Monte Carlo step.
func (s *Sim) Step() {
	for _, h := range s.hooks {
		h(s.engine)
	}
	s.engine.Step()
	s.rebuildDisplay()
}
