package cpm

import (
	"errors"
	"math"
	"slices"
	"testing"

	"cellpotts/pkg/core"
	"cellpotts/pkg/grid"
)

func newTestEngine(t *testing.T, extents []int, torus []bool, seed int64) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Extents = extents
	cfg.Torus = torus
	cfg.Seed = seed
	cfg.Kinds = 3
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func seedBlock(t *testing.T, e *Engine, kind CellKind, x0, y0, size int) CellID {
	t.Helper()
	id, err := e.NewCell(kind)
	if err != nil {
		t.Fatalf("NewCell: %v", err)
	}
	for x := x0; x < x0+size; x++ {
		for y := y0; y < y0+size; y++ {
			if err := e.SetCellIDAt(grid.Coord{x, y}, id); err != nil {
				t.Fatalf("SetCellIDAt: %v", err)
			}
		}
	}
	return id
}

func checkBookkeeping(t *testing.T, e *Engine) {
	t.Helper()
	counts := map[CellID]int{}
	for _, id := range e.Pixels(true) {
		counts[id]++
	}
	for _, id := range e.CellIDs() {
		vol, _ := e.VolumeOf(id)
		if vol != counts[id] {
			t.Fatalf("cell %d volume %d, grid holds %d pixels", id, vol, counts[id])
		}
		delete(counts, id)
	}
	if len(counts) != 0 {
		t.Fatalf("grid holds pixels of dead cells: %v", counts)
	}
	enc := e.Encoding()
	var nb []grid.Index
	for i, id := range e.Pixels(false) {
		nb = enc.Neighbors(i, nb[:0])
		want := false
		for _, n := range nb {
			if e.CellIDAt(n) != id {
				want = true
				break
			}
		}
		if got := e.IsBorder(i); got != want {
			t.Fatalf("pixel %v border=%v, want %v", enc.ToCoord(i), got, want)
		}
	}
}

func TestVolumeAndBorderInvariants(t *testing.T) {
	e := newTestEngine(t, []int{24, 20}, []bool{true, false}, 5)
	seedBlock(t, e, 1, 2, 2, 4)
	seedBlock(t, e, 2, 10, 8, 5)
	seedBlock(t, e, 1, 18, 0, 3)
	checkBookkeeping(t, e)
	for k := 0; k < 10; k++ {
		e.Step()
		checkBookkeeping(t, e)
	}
	if e.Time() != 10 {
		t.Fatalf("Time = %d, want 10", e.Time())
	}
}

func TestCellDeath(t *testing.T) {
	e := newTestEngine(t, []int{8, 8}, nil, 1)
	id := seedBlock(t, e, 2, 3, 3, 1)
	if vol, ok := e.VolumeOf(id); !ok || vol != 1 {
		t.Fatalf("VolumeOf = %d, %v", vol, ok)
	}
	e.setPixel(e.Encoding().ToIndex(grid.Coord{3, 3}), Background)
	if _, ok := e.VolumeOf(id); ok {
		t.Fatal("volume still present after the last pixel was lost")
	}
	if _, ok := e.KindOf(id); ok {
		t.Fatal("kind still present after the last pixel was lost")
	}
	if len(e.BorderPixels()) != 0 {
		t.Fatalf("all-background grid should have no border, got %d", len(e.BorderPixels()))
	}
	if err := e.SetCellIDAt(grid.Coord{0, 0}, id); !errors.Is(err, ErrUnknownCell) {
		t.Fatalf("seeding a dead cell should fail with ErrUnknownCell, got %v", err)
	}
}

type fixedSoft struct {
	name string
	fn   func(src, tgt grid.Index) float64
}

func (f fixedSoft) Name() string           { return f.name }
func (f fixedSoft) Capability() Capability { return Soft }
func (f fixedSoft) DeltaH(_ View, src, tgt grid.Index, _, _ CellID) float64 {
	return f.fn(src, tgt)
}

type countingHard struct {
	result bool
	calls  *int
}

func (c countingHard) Name() string           { return "counting" }
func (c countingHard) Capability() Capability { return Hard }
func (c countingHard) Fulfilled(View, grid.Index, grid.Index, CellID, CellID) bool {
	*c.calls++
	return c.result
}

func TestHamiltonianAdditivity(t *testing.T) {
	e := newTestEngine(t, []int{10, 10}, nil, 9)
	seedBlock(t, e, 1, 2, 2, 3)
	parts := []fixedSoft{
		{"a", func(src, tgt grid.Index) float64 { return float64(src) * 0.5 }},
		{"b", func(src, tgt grid.Index) float64 { return -float64(tgt) }},
		{"c", func(src, tgt grid.Index) float64 { return 3.25 }},
	}
	for _, p := range parts {
		if err := e.Attach(p); err != nil {
			t.Fatalf("Attach(%s): %v", p.name, err)
		}
	}
	src := e.Encoding().ToIndex(grid.Coord{2, 2})
	tgt := e.Encoding().ToIndex(grid.Coord{1, 2})
	want := 0.0
	for _, p := range parts {
		want += p.DeltaH(e, src, tgt, 1, 0)
	}
	if got := e.DeltaH(src, tgt); math.Abs(got-want) > 1e-12 {
		t.Fatalf("DeltaH = %f, sum of parts = %f", got, want)
	}
}

func TestHardConstraintsShortCircuit(t *testing.T) {
	e := newTestEngine(t, []int{6, 6}, nil, 2)
	seedBlock(t, e, 1, 1, 1, 2)
	var first, second int
	if err := e.Attach(countingHard{result: false, calls: &first}); err != nil {
		t.Fatal(err)
	}
	if err := e.Attach(countingHard{result: true, calls: &second}); err != nil {
		t.Fatal(err)
	}
	before := slices.Clone(e.grid.Data())
	e.Run(3)
	if first == 0 {
		t.Fatal("hard constraint never consulted")
	}
	if second != 0 {
		t.Fatalf("second hard constraint evaluated %d times after a rejection", second)
	}
	if !slices.Equal(before, e.grid.Data()) {
		t.Fatal("grid changed although every attempt was vetoed")
	}
	if c := e.Counters(); c.Accepted != 0 || c.Attempts == 0 {
		t.Fatalf("unexpected counters %+v", c)
	}
}

func TestAcceptanceRule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Temperature = 2
	e, err := New(cfg, core.NewRNG(77))
	if err != nil {
		t.Fatal(err)
	}
	for _, dH := range []float64{-5, -1e-9, 0} {
		for k := 0; k < 1000; k++ {
			if !e.Accept(dH) {
				t.Fatalf("dH=%v rejected", dH)
			}
		}
	}
	const trials = 200000
	for _, dH := range []float64{0.5, 1, 4} {
		accepted := 0
		for k := 0; k < trials; k++ {
			if e.Accept(dH) {
				accepted++
			}
		}
		want := math.Exp(-dH / cfg.Temperature)
		got := float64(accepted) / trials
		sigma := math.Sqrt(want * (1 - want) / trials)
		if math.Abs(got-want) > 5*sigma {
			t.Fatalf("dH=%v: acceptance %.4f, want %.4f ± %.4f", dH, got, want, 5*sigma)
		}
	}
}

func TestDeterministicTrajectory(t *testing.T) {
	run := func() []CellID {
		e := newTestEngine(t, []int{16, 16}, nil, 1234)
		seedBlock(t, e, 1, 2, 2, 4)
		seedBlock(t, e, 2, 8, 8, 4)
		e.Run(5)
		return slices.Clone(e.grid.Data())
	}
	if !slices.Equal(run(), run()) {
		t.Fatal("same seed produced different trajectories")
	}
}

func TestRandomSeedIsRecorded(t *testing.T) {
	e := newTestEngine(t, []int{4, 4}, nil, 0)
	if e.Seed() == 0 {
		t.Skip("crypto/rand returned a zero seed")
	}
	replay := newTestEngine(t, []int{4, 4}, nil, e.Seed())
	if replay.RNG().Float64() != e.RNG().Float64() {
		t.Fatal("recorded seed does not reproduce the generator")
	}
}

func TestCellIDSpace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extents = []int{4, 4}
	cfg.Seed = 1
	cfg.MaxCellID = 3
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	var ids []CellID
	for k := 0; k < 3; k++ {
		id, err := e.NewCell(1)
		if err != nil {
			t.Fatalf("NewCell %d: %v", k, err)
		}
		ids = append(ids, id)
	}
	if !slices.Equal(ids, []CellID{1, 2, 3}) {
		t.Fatalf("ids = %v", ids)
	}
	if _, err := e.NewCell(1); !errors.Is(err, ErrTooManyCells) {
		t.Fatalf("expected ErrTooManyCells, got %v", err)
	}
	if err := e.SetCellIDAt(grid.Coord{0, 0}, 2); err != nil {
		t.Fatal(err)
	}
	if err := e.SetCellIDAt(grid.Coord{0, 0}, Background); err != nil {
		t.Fatal(err)
	}
	id, err := e.NewCell(1)
	if err != nil || id != 2 {
		t.Fatalf("expected freed id 2 to be reused, got %d, %v", id, err)
	}
	if _, err := e.NewCell(0); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("background kind should be rejected, got %v", err)
	}
	if _, err := e.NewCell(2); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("kind beyond Kinds should be rejected, got %v", err)
	}
}

type badCapability struct{}

func (badCapability) Name() string           { return "bad" }
func (badCapability) Capability() Capability { return Hard }

func TestAttachRejectsCapabilityMismatch(t *testing.T) {
	e := newTestEngine(t, []int{4, 4}, nil, 1)
	if err := e.Attach(badCapability{}); !errors.Is(err, ErrCapability) {
		t.Fatalf("expected ErrCapability, got %v", err)
	}
	if len(e.Constraints()) != 0 {
		t.Fatal("rejected constraint must not be registered")
	}
}

type recorder struct {
	e       *Engine
	changes int
	steps   int
	t       *testing.T
}

func (r *recorder) Name() string           { return "recorder" }
func (r *recorder) Capability() Capability { return Soft }
func (r *recorder) DeltaH(View, grid.Index, grid.Index, CellID, CellID) float64 {
	return 0
}
func (r *recorder) PixelChanged(v View, i grid.Index, oldID, newID CellID) {
	r.changes++
	if v.CellIDAt(i) != newID {
		r.t.Fatalf("listener ran before the grid was updated")
	}
}
func (r *recorder) StepComplete(View) { r.steps++ }

func TestLifecycleHooksAndLookup(t *testing.T) {
	e := newTestEngine(t, []int{10, 10}, nil, 4)
	r := &recorder{e: e, t: t}
	if err := e.Attach(r); err != nil {
		t.Fatal(err)
	}
	seedBlock(t, e, 1, 3, 3, 2)
	if r.changes != 4 {
		t.Fatalf("seeding 4 pixels notified %d changes", r.changes)
	}
	e.Run(4)
	if r.steps != 4 {
		t.Fatalf("StepComplete fired %d times over 4 steps", r.steps)
	}
	if c, ok := e.Constraint("recorder", 0); !ok || c != r {
		t.Fatal("Constraint lookup by name failed")
	}
	if _, ok := e.Constraint("recorder", 1); ok {
		t.Fatal("only one recorder is attached")
	}
	if got, ok := ConstraintOf[*recorder](e, 0); !ok || got != r {
		t.Fatal("ConstraintOf lookup failed")
	}
}

func TestCachedStatInvalidatesPerStep(t *testing.T) {
	e := newTestEngine(t, []int{8, 8}, nil, 3)
	seedBlock(t, e, 1, 2, 2, 2)
	calls := 0
	stat := func(v View) int { calls++; return v.Time() }
	CachedStat(e, "time", stat)
	CachedStat(e, "time", stat)
	if calls != 1 {
		t.Fatalf("stat computed %d times within one step", calls)
	}
	e.Step()
	if got := CachedStat(e, "time", stat); got != 1 || calls != 2 {
		t.Fatalf("stat not recomputed after a step: value %d, calls %d", got, calls)
	}
}

type cachedReader struct {
	calls int
}

func (c *cachedReader) Name() string           { return "cachedReader" }
func (c *cachedReader) Capability() Capability { return Soft }
func (c *cachedReader) DeltaH(v View, _, _ grid.Index, _, _ CellID) float64 {
	CachedStat(v, "volumes", func(v View) int {
		c.calls++
		return len(v.CellIDs())
	})
	return 0
}

func TestCachedStatSurvivesCopiesWithinStep(t *testing.T) {
	e := newTestEngine(t, []int{12, 12}, nil, 5)
	seedBlock(t, e, 1, 2, 2, 4)
	seedBlock(t, e, 2, 6, 6, 4)
	r := &cachedReader{}
	if err := e.Attach(r); err != nil {
		t.Fatal(err)
	}
	e.Run(3)
	if e.Counters().Accepted == 0 {
		t.Fatal("zero-energy copies should be accepted")
	}
	if r.calls < 1 || r.calls > e.Time() {
		t.Fatalf("stat computed %d times over %d steps with %d accepted copies", r.calls, e.Time(), e.Counters().Accepted)
	}

	CachedStat(e, "volumes", func(View) int { r.calls++; return 0 })
	before := r.calls
	if err := e.SetCellIDAt(grid.Coord{0, 0}, Background); err != nil {
		t.Fatal(err)
	}
	CachedStat(e, "volumes", func(View) int { r.calls++; return 0 })
	CachedStat(e, "volumes", func(View) int { r.calls++; return 0 })
	if r.calls != before+1 {
		t.Fatalf("direct write should drop the cache once: calls %d, want %d", r.calls, before+1)
	}
}

func TestStepWithoutBorderTerminates(t *testing.T) {
	e := newTestEngine(t, []int{5, 5}, nil, 8)
	e.Step()
	if e.Time() != 1 {
		t.Fatalf("Time = %d after one step on an empty grid", e.Time())
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Temperature = 0
	if _, err := New(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("zero temperature should fail, got %v", err)
	}
	cfg = FromMap(map[string]string{"w": "40", "h": "30", "torus": "false", "temperature": "7", "kinds": "4", "seed": "12"})
	if cfg.Extents[0] != 40 || cfg.Extents[1] != 30 || cfg.Temperature != 7 || cfg.Kinds != 4 || cfg.Seed != 12 {
		t.Fatalf("FromMap produced %+v", cfg)
	}
	if !slices.Equal(cfg.Torus, []bool{false, false}) {
		t.Fatalf("torus flags %v", cfg.Torus)
	}
	cfg.Extents = []int{1 << 20, 1 << 20}
	if _, err := New(cfg, nil); !errors.Is(err, grid.ErrGridTooLarge) {
		t.Fatalf("oversized grid should fail with ErrGridTooLarge, got %v", err)
	}
}
