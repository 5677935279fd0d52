package main

import (
	"testing"

	"cellpotts/internal/core"
	"cellpotts/internal/sims/cpmsim"
	"cellpotts/internal/stream"
)

func testServer(t *testing.T) *server {
	t.Helper()
	sim, err := core.New("cellsort", map[string]string{"w": "40", "h": "40", "radius": "8", "side": "4"})
	if err != nil {
		t.Fatal(err)
	}
	return newServer(sim.(*cpmsim.Sim), stream.NewHub(), 10)
}

func TestApplyControls(t *testing.T) {
	s := testServer(t)

	if err := s.apply(stream.Control{Type: stream.ControlPause}); err != nil || !s.paused {
		t.Fatalf("pause: %v paused=%v", err, s.paused)
	}
	s.advance()
	if s.sim.Engine().Time() != 0 {
		t.Fatal("paused server stepped")
	}
	if err := s.apply(stream.Control{Type: stream.ControlResume}); err != nil || s.paused {
		t.Fatalf("resume: %v paused=%v", err, s.paused)
	}

	if err := s.apply(stream.Control{Type: stream.ControlTemperature, Value: 33}); err != nil {
		t.Fatal(err)
	}
	if got := s.sim.Engine().Temperature(); got != 33 {
		t.Fatalf("temperature %v", got)
	}
	if err := s.apply(stream.Control{Type: stream.ControlTemperature, Value: -1}); err == nil {
		t.Fatal("negative temperature accepted")
	}

	if err := s.apply(stream.Control{Type: stream.ControlReset, Value: 77}); err != nil {
		t.Fatal(err)
	}
	if s.sim.Engine().Seed() != 77 || s.sim.Engine().Time() != 0 {
		t.Fatalf("reset kept seed %d time %d", s.sim.Engine().Seed(), s.sim.Engine().Time())
	}
	if s.sim.Engine().Temperature() != 33 {
		t.Fatal("reset dropped the temperature change")
	}
	if err := s.apply(stream.Control{Type: "warp"}); err == nil {
		t.Fatal("unknown control accepted")
	}
}
