package ui

import (
	"slices"
	"testing"

	"cellpotts/internal/core"
)

func temperatureStepper() stepper {
	return stepper{ctrl: core.ParameterControl{
		Key: "temperature", Type: core.ParamTypeFloat,
		Step: 1, Min: 1, HasMin: true, Max: 500, HasMax: true,
	}}
}

func TestStepperClamps(t *testing.T) {
	s := temperatureStepper()
	if v, ok := s.next(20, 1, false); !ok || v != 21 {
		t.Fatalf("fine step up = %v, %v", v, ok)
	}
	if v, ok := s.next(20, -1, true); !ok || v != 10 {
		t.Fatalf("coarse step down = %v, %v", v, ok)
	}
	if v, ok := s.next(5, -1, true); !ok || v != 1 {
		t.Fatalf("step below the minimum = %v, %v", v, ok)
	}
	if _, ok := s.next(500, 1, false); ok {
		t.Fatal("step past the maximum reported a change")
	}
	if _, ok := s.next(20, 0, false); ok {
		t.Fatal("zero direction reported a change")
	}
}

func TestStepperFormat(t *testing.T) {
	if got := temperatureStepper().format(20); got != "20" {
		t.Fatalf("format = %q", got)
	}
	fine := stepper{ctrl: core.ParameterControl{Step: 0.05}}
	if got := fine.format(0.25); got != "0.25" {
		t.Fatalf("format = %q", got)
	}
}

func TestSeriesKeepsNewest(t *testing.T) {
	s := newSeries(3)
	s.push(1)
	s.push(2)
	if got := s.values(); !slices.Equal(got, []float64{1, 2}) {
		t.Fatalf("partial series %v", got)
	}
	s.push(3)
	s.push(4)
	if got := s.values(); !slices.Equal(got, []float64{2, 3, 4}) {
		t.Fatalf("wrapped series %v", got)
	}
}

func TestSnapshotFloat(t *testing.T) {
	snap := core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name: "Engine",
		Params: []core.Parameter{
			core.FloatParam("acceptance", "Acceptance ratio", 0.25),
			core.StringParam("torus", "Torus", "true,true"),
		},
	}}}
	if v, ok := snapshotFloat(snap, "acceptance"); !ok || v != 0.25 {
		t.Fatalf("acceptance = %v, %v", v, ok)
	}
	if _, ok := snapshotFloat(snap, "torus"); ok {
		t.Fatal("non-numeric value parsed")
	}
	if _, ok := snapshotFloat(snap, "missing"); ok {
		t.Fatal("missing key parsed")
	}
}
