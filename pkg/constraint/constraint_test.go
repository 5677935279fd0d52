package constraint

import (
	"errors"
	"math"
	"testing"

	"cellpotts/pkg/core"
	"cellpotts/pkg/cpm"
	"cellpotts/pkg/grid"
	"cellpotts/pkg/stats"
)

func newEngine(t *testing.T, extents []int, torus []bool, kinds int) *cpm.Engine {
	t.Helper()
	cfg := cpm.DefaultConfig()
	cfg.Extents = extents
	cfg.Torus = torus
	cfg.Kinds = kinds
	e, err := cpm.New(cfg, core.NewRNG(7))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func clipped(dims int) []bool { return make([]bool, dims) }

func seed(t *testing.T, e *cpm.Engine, kind cpm.CellKind, coords ...grid.Coord) cpm.CellID {
	t.Helper()
	id, err := e.NewCell(kind)
	if err != nil {
		t.Fatalf("new cell: %v", err)
	}
	paint(t, e, id, coords...)
	return id
}

func paint(t *testing.T, e *cpm.Engine, id cpm.CellID, coords ...grid.Coord) {
	t.Helper()
	for _, c := range coords {
		if err := e.SetCellIDAt(c, id); err != nil {
			t.Fatalf("set %v: %v", c, err)
		}
	}
}

func block(x0, y0, w, h int) []grid.Coord {
	var out []grid.Coord
	for x := x0; x < x0+w; x++ {
		for y := y0; y < y0+h; y++ {
			out = append(out, grid.Coord{x, y})
		}
	}
	return out
}

func idx(e *cpm.Engine, x, y int) grid.Index { return e.Encoding().ToIndex(grid.Coord{x, y}) }

func TestBuildErrors(t *testing.T) {
	if _, err := Build(Descriptor{Type: "Gravity"}); err == nil {
		t.Fatal("unknown constraint type was accepted")
	}

	_, err := Build(Descriptor{Type: VolumeName, Params: Params{"LAMBDA_V": []float64{0, 1}}})
	var pe *ParamError
	if !errors.As(err, &pe) || pe.Param != "V" || pe.Constraint != VolumeName {
		t.Fatalf("missing V: got %v", err)
	}
	if !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("errors.Is(ErrInvalidParam) failed for %v", err)
	}

	_, err = Build(Descriptor{Type: AdhesionName, Params: Params{"J": []any{[]any{0.0, 1.0}, []any{1.0}}}})
	if !errors.As(err, &pe) || pe.Param != "J" {
		t.Fatalf("ragged J: got %v", err)
	}
	_, err = Build(Descriptor{Type: AdhesionName, Params: Params{"J": [][]float64{{0, 1}, {2, 0}}}})
	if !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("asymmetric J: got %v", err)
	}
	_, err = Build(Descriptor{Type: VolumeName, Params: Params{"LAMBDA_V": []any{0, "x"}, "V": []int{0, 1}}})
	if !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("non-numeric LAMBDA_V: got %v", err)
	}
	_, err = Build(Descriptor{Type: VolumeRangeName, Params: Params{"VRANGE_MIN": []float64{0, 1.5}, "VRANGE_MAX": []int{0, 3}}})
	if !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("fractional VRANGE_MIN: got %v", err)
	}
	_, err = Build(Descriptor{Type: ConnectivityName, Params: Params{"CONNECTED": []any{false, 1}}})
	if !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("non-bool CONNECTED: got %v", err)
	}
}

func TestAttachChecksKindCount(t *testing.T) {
	e := newEngine(t, []int{8, 8}, nil, 3)
	_, err := Attach(e, Descriptor{Type: VolumeName, Params: Params{"LAMBDA_V": []float64{0, 1}, "V": []float64{0, 10}}})
	var pe *ParamError
	if !errors.As(err, &pe) || pe.Param != "LAMBDA_V" {
		t.Fatalf("short per-kind array: got %v", err)
	}
	if len(e.Constraints()) != 0 {
		t.Fatal("a rejected constraint was attached")
	}

	cs, err := Attach(e,
		Descriptor{Type: VolumeName, Params: Params{"LAMBDA_V": []float64{0, 1, 1}, "V": []float64{0, 10, 10}}},
		Descriptor{Type: BarrierName, Params: Params{"IS_BARRIER": []bool{false, false, true}}},
	)
	if err != nil || len(cs) != 2 || len(e.Constraints()) != 2 {
		t.Fatalf("attach: %v (%d constraints)", err, len(e.Constraints()))
	}
	if _, ok := cpm.ConstraintOf[*Barrier](e, 0); !ok {
		t.Fatal("barrier not registered as hard constraint")
	}
}

func TestAdhesionDeltaH(t *testing.T) {
	e := newEngine(t, []int{5, 5}, clipped(2), 2)
	a, err := NewAdhesion([][]float64{{0, 10}, {10, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Attach(a); err != nil {
		t.Fatal(err)
	}
	seed(t, e, 1, grid.Coord{2, 2})

	// Extending the cell into (2,3) exposes seven new contacts and removes one.
	if got := e.DeltaH(idx(e, 2, 2), idx(e, 2, 3)); got != 60 {
		t.Fatalf("extend: ΔH = %v, want 60", got)
	}
	// Removing the only pixel erases all eight contacts.
	if got := e.DeltaH(idx(e, 2, 3), idx(e, 2, 2)); got != -80 {
		t.Fatalf("retract: ΔH = %v, want -80", got)
	}
}

func TestVolumeDeltaH(t *testing.T) {
	e := newEngine(t, []int{6, 6}, nil, 2)
	v, err := NewVolume([]float64{0, 2}, []float64{0, 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Attach(v); err != nil {
		t.Fatal(err)
	}
	seed(t, e, 1, grid.Coord{2, 2})

	// Volume 1 -> 2 against a target of 4: 2·(2² - 3²).
	if got := e.DeltaH(idx(e, 2, 2), idx(e, 2, 3)); got != -10 {
		t.Fatalf("grow: ΔH = %v, want -10", got)
	}
	// Volume 1 -> 0: 2·(4² - 3²).
	if got := e.DeltaH(idx(e, 2, 3), idx(e, 2, 2)); got != 14 {
		t.Fatalf("shrink: ΔH = %v, want 14", got)
	}
}

func perimeterEnergy(e *cpm.Engine, p *Perimeter) float64 {
	fresh, _ := NewPerimeter(p.lambda, p.target)
	fresh.Init(e)
	h := 0.0
	for _, id := range e.CellIDs() {
		k := cpm.KindOrBackground(e, id)
		d := p.target[k] - float64(fresh.PerimeterOf(id))
		h += p.lambda[k] * d * d
	}
	return h
}

func TestPerimeterIncrementalMatchesRecount(t *testing.T) {
	e := newEngine(t, []int{24, 24}, nil, 3)
	p, err := NewPerimeter([]float64{0, 1, 2}, []float64{0, 18, 24})
	if err != nil {
		t.Fatal(err)
	}
	seed(t, e, 1, block(3, 3, 4, 4)...)
	seed(t, e, 2, block(7, 3, 4, 5)...)
	seed(t, e, 1, block(15, 15, 3, 3)...)
	// Attached after seeding: Init must pick up the existing cells.
	if err := e.Attach(p); err != nil {
		t.Fatal(err)
	}
	if _, err := Attach(e, Descriptor{Type: VolumeName, Params: Params{"LAMBDA_V": []float64{0, 1, 1}, "V": []float64{0, 16, 20}}}); err != nil {
		t.Fatal(err)
	}

	rng := core.NewRNG(3)
	var nb []grid.Index
	for trial := 0; trial < 300; trial++ {
		if trial%50 == 0 {
			e.Step()
		}
		border := e.BorderPixels()
		tgt := border[rng.IntN(len(border))]
		nb = e.Encoding().Neighbors(tgt, nb[:0])
		src := nb[rng.IntN(len(nb))]
		srcID, tgtID := e.CellIDAt(src), e.CellIDAt(tgt)
		if srcID == tgtID {
			continue
		}
		if vol, _ := e.VolumeOf(tgtID); tgtID != cpm.Background && vol == 1 {
			continue
		}
		before := perimeterEnergy(e, p)
		dH := p.DeltaH(e, src, tgt, srcID, tgtID)
		paint(t, e, srcID, e.Encoding().ToCoord(tgt))
		after := perimeterEnergy(e, p)
		if math.Abs(after-before-dH) > 1e-9 {
			t.Fatalf("trial %d: ΔH %v but energy moved by %v", trial, dH, after-before)
		}
	}

	fresh, _ := NewPerimeter(p.lambda, p.target)
	fresh.Init(e)
	for _, id := range e.CellIDs() {
		if got, want := p.PerimeterOf(id), fresh.PerimeterOf(id); got != want {
			t.Fatalf("cell %d: tracked perimeter %d, recount %d", id, got, want)
		}
	}
}

func TestPerimeterForgetsDeadCells(t *testing.T) {
	e := newEngine(t, []int{6, 6}, nil, 2)
	p, _ := NewPerimeter([]float64{0, 1}, []float64{0, 8})
	if err := e.Attach(p); err != nil {
		t.Fatal(err)
	}
	id := seed(t, e, 1, grid.Coord{2, 2})
	if got := p.PerimeterOf(id); got != 8 {
		t.Fatalf("single pixel perimeter %d, want 8", got)
	}
	paint(t, e, cpm.Background, grid.Coord{2, 2})
	if _, ok := p.perims[id]; ok {
		t.Fatal("dead cell still has a perimeter entry")
	}
}

func TestActivityDecay(t *testing.T) {
	e := newEngine(t, []int{8, 8}, nil, 2)
	a, err := NewActivity([]float64{0, 100}, []int{0, 3}, ArithmeticMean)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Attach(a); err != nil {
		t.Fatal(err)
	}
	id := seed(t, e, 1, grid.Coord{2, 2}, grid.Coord{3, 2})
	i := idx(e, 3, 2)
	if got := a.ActivityOf(i); got != 3 {
		t.Fatalf("fresh pixel activity %d, want 3", got)
	}
	a.StepComplete(e)
	if got := a.ActivityOf(i); got != 2 {
		t.Fatalf("activity after one step %d, want 2", got)
	}
	// A newly gained pixel is more active than the old body, so copying
	// the cell further from it is favoured.
	paint(t, e, id, grid.Coord{4, 2})
	if dH := e.DeltaH(idx(e, 4, 2), idx(e, 5, 2)); dH >= 0 {
		t.Fatalf("copy from active front has ΔH %v, want negative", dH)
	}
	a.StepComplete(e)
	a.StepComplete(e)
	a.StepComplete(e)
	for _, c := range []grid.Coord{{2, 2}, {3, 2}, {4, 2}} {
		if got := a.ActivityOf(e.Encoding().ToIndex(c)); got != 0 {
			t.Fatalf("activity at %v did not decay: %d", c, got)
		}
	}
	if _, err := NewActivity([]float64{0, 1}, []int{0, -1}, GeometricMean); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("negative MAX_ACT: got %v", err)
	}
}

func TestConnectivityRejectsDiagonalSplit(t *testing.T) {
	for _, connected := range []bool{true, false} {
		e := newEngine(t, []int{7, 7}, clipped(2), 2)
		seed(t, e, 1, grid.Coord{2, 2}, grid.Coord{3, 3}, grid.Coord{4, 4})
		if _, err := Attach(e, Descriptor{Type: ConnectivityName, Params: Params{"CONNECTED": []bool{false, connected}}}); err != nil {
			t.Fatal(err)
		}
		got := e.Admissible(idx(e, 2, 3), idx(e, 3, 3))
		if got == connected {
			t.Fatalf("CONNECTED=%v: removing the middle pixel admissible=%v", connected, got)
		}
	}
}

func TestConnectivityAllowsErosion(t *testing.T) {
	e := newEngine(t, []int{8, 8}, clipped(2), 2)
	seed(t, e, 1, block(2, 2, 3, 3)...)
	c := NewConnectivity([]bool{false, true})
	if err := e.Attach(c); err != nil {
		t.Fatal(err)
	}
	if !e.Admissible(idx(e, 1, 2), idx(e, 2, 2)) {
		t.Fatal("removing a corner of a block was rejected")
	}
	if !e.Admissible(idx(e, 2, 1), idx(e, 3, 2)) {
		t.Fatal("removing an edge pixel of a block was rejected")
	}
	// Copying into the medium is never restricted.
	if !e.Admissible(idx(e, 2, 2), idx(e, 2, 1)) {
		t.Fatal("growth into the background was rejected")
	}
}

func TestConnectivityHoldsDuringSimulation(t *testing.T) {
	e := newEngine(t, []int{30, 30}, nil, 2)
	seed(t, e, 1, block(4, 4, 5, 5)...)
	seed(t, e, 1, block(15, 15, 6, 4)...)
	_, err := Attach(e,
		Descriptor{Type: AdhesionName, Params: Params{"J": [][]float64{{0, 20}, {20, 100}}}},
		Descriptor{Type: VolumeName, Params: Params{"LAMBDA_V": []float64{0, 5}, "V": []float64{0, 25}}},
		Descriptor{Type: ConnectivityName, Params: Params{"CONNECTED": []bool{false, true}}},
	)
	if err != nil {
		t.Fatal(err)
	}
	for step := 0; step < 15; step++ {
		e.Step()
		for id, parts := range stats.ConnectedComponents(e) {
			if len(parts) != 1 {
				t.Fatalf("step %d: cell %d has %d pieces", step, id, len(parts))
			}
		}
	}
}

func TestSoftConnectivityChargesSplits(t *testing.T) {
	e := newEngine(t, []int{7, 7}, clipped(2), 2)
	seed(t, e, 1, grid.Coord{2, 2}, grid.Coord{3, 3}, grid.Coord{4, 4})
	c, err := NewSoftConnectivity([]float64{0, 50})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Attach(c); err != nil {
		t.Fatal(err)
	}
	if got := e.DeltaH(idx(e, 2, 3), idx(e, 3, 3)); got != 50 {
		t.Fatalf("split ΔH = %v, want 50", got)
	}
	if got := e.DeltaH(idx(e, 1, 1), idx(e, 2, 2)); got != 0 {
		t.Fatalf("removing an end pixel ΔH = %v, want 0", got)
	}
}

func TestBarrierFreezesCells(t *testing.T) {
	e := newEngine(t, []int{8, 8}, nil, 3)
	wall := seed(t, e, 2, block(0, 0, 1, 8)...)
	seed(t, e, 1, grid.Coord{2, 2})
	if _, err := Attach(e, Descriptor{Type: BarrierName, Params: Params{"IS_BARRIER": []any{false, false, true}}}); err != nil {
		t.Fatal(err)
	}
	if e.Admissible(idx(e, 0, 3), idx(e, 1, 3)) {
		t.Fatal("barrier grew")
	}
	if e.Admissible(idx(e, 1, 2), idx(e, 0, 2)) {
		t.Fatal("barrier shrank")
	}
	if !e.Admissible(idx(e, 2, 2), idx(e, 2, 3)) {
		t.Fatal("ordinary cell was blocked")
	}
	e.Run(5)
	if vol, _ := e.VolumeOf(wall); vol != 8 {
		t.Fatalf("barrier volume changed to %d", vol)
	}
	if _, err := NewBarrier([]bool{true, false}); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("background barrier: got %v", err)
	}
}

func TestVolumeRange(t *testing.T) {
	e := newEngine(t, []int{8, 8}, nil, 2)
	seed(t, e, 1, grid.Coord{2, 2}, grid.Coord{3, 2})
	c, err := NewVolumeRange([]int{0, 2}, []int{0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Attach(c); err != nil {
		t.Fatal(err)
	}
	if e.Admissible(idx(e, 2, 2), idx(e, 2, 3)) {
		t.Fatal("growth beyond VRANGE_MAX admitted")
	}
	if e.Admissible(idx(e, 2, 3), idx(e, 2, 2)) {
		t.Fatal("shrinking below VRANGE_MIN admitted")
	}
	if _, err := NewVolumeRange([]int{0, 5}, []int{0, 3}); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("max below min: got %v", err)
	}
}

func TestChemotaxis(t *testing.T) {
	e := newEngine(t, []int{10, 10}, nil, 2)
	f := grid.NewField(e.Encoding())
	for i := range f.Indices() {
		f.Set(i, float64(f.Component(i, 0)))
	}
	seed(t, e, 1, grid.Coord{4, 4})
	if _, err := Attach(e, Descriptor{Type: ChemotaxisName, Params: Params{"LAMBDA_CH": []float64{0, 3}, "field": f}}); err != nil {
		t.Fatal(err)
	}
	if got := e.DeltaH(idx(e, 4, 4), idx(e, 5, 4)); got != -3 {
		t.Fatalf("up the gradient ΔH = %v, want -3", got)
	}
	if got := e.DeltaH(idx(e, 4, 4), idx(e, 3, 4)); got != 3 {
		t.Fatalf("down the gradient ΔH = %v, want 3", got)
	}
	if got := e.DeltaH(idx(e, 5, 4), idx(e, 4, 4)); got != 0 {
		t.Fatalf("medium copies are not chemotactic, ΔH = %v", got)
	}

	other, _ := grid.NewEncoding([]int{12, 10}, nil)
	c, _ := NewChemotaxis([]float64{0, 1}, grid.NewField(other))
	if err := e.Attach(c); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("mismatched field: got %v", err)
	}
}

func TestPersistenceFollowsMotion(t *testing.T) {
	e := newEngine(t, []int{20, 20}, nil, 2)
	id := seed(t, e, 1, block(5, 5, 3, 3)...)
	p, err := NewPersistence([]float64{0, 10}, []float64{0, 0}, []int{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Attach(p); err != nil {
		t.Fatal(err)
	}

	p.StepComplete(e)
	d, ok := p.Direction(id)
	if !ok || math.Abs(math.Hypot(d[0], d[1])-1) > 1e-9 {
		t.Fatalf("initial direction %v is not a unit vector", d)
	}

	// Shift the cell one pixel along +x.
	paint(t, e, id, block(8, 5, 1, 3)...)
	paint(t, e, cpm.Background, block(5, 5, 1, 3)...)
	p.StepComplete(e)
	d, _ = p.Direction(id)
	if math.Abs(d[0]-1) > 1e-9 || math.Abs(d[1]) > 1e-9 {
		t.Fatalf("direction after moving +x is %v", d)
	}
	if got := e.DeltaH(idx(e, 8, 6), idx(e, 9, 6)); got != -10 {
		t.Fatalf("copy along the direction ΔH = %v, want -10", got)
	}

	paint(t, e, cpm.Background, block(6, 5, 3, 3)...)
	p.StepComplete(e)
	if _, ok := p.Direction(id); ok {
		t.Fatal("dead cell kept its direction")
	}
}

func TestPersistenceForgetsReusedID(t *testing.T) {
	cfg := cpm.DefaultConfig()
	cfg.Extents = []int{12, 12}
	cfg.Kinds = 2
	cfg.MaxCellID = 1
	e, err := cpm.New(cfg, core.NewRNG(3))
	if err != nil {
		t.Fatal(err)
	}
	id := seed(t, e, 1, block(4, 4, 3, 3)...)
	vol, err := NewVolume([]float64{0, 50}, []float64{0, 9})
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPersistence([]float64{0, 5}, []float64{0.5, 0.5}, []int{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Attach(vol); err != nil {
		t.Fatal(err)
	}
	if err := e.Attach(p); err != nil {
		t.Fatal(err)
	}
	e.Step()
	if _, ok := p.Direction(id); !ok {
		t.Fatal("live cell has no direction after a step")
	}

	var cells []grid.Coord
	for i, owner := range e.Pixels(true) {
		if owner == id {
			cells = append(cells, e.Encoding().ToCoord(i))
		}
	}
	paint(t, e, cpm.Background, cells...)
	if _, alive := e.VolumeOf(id); alive {
		t.Fatal("cell survived losing every pixel")
	}

	reused, err := e.NewCell(1)
	if err != nil {
		t.Fatal(err)
	}
	if reused != id {
		t.Fatalf("expected id %d to be reused, got %d", id, reused)
	}
	if _, ok := p.Direction(reused); ok {
		t.Fatal("reused id inherited the dead cell's direction")
	}
	paint(t, e, reused, grid.Coord{2, 2})
	if got := p.DeltaH(e, idx(e, 2, 2), idx(e, 3, 2), reused, cpm.Background); got != 0 {
		t.Fatalf("new cell without a direction ΔH = %v, want 0", got)
	}
}
