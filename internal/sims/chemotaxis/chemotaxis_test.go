package chemotaxis

import (
	"testing"

	"cellpotts/internal/core"
	"cellpotts/internal/sims/cpmsim"
	"cellpotts/pkg/grid"
)

func TestSourceBuildsGradient(t *testing.T) {
	enc, err := grid.NewEncoding([]int{31, 31}, nil)
	if err != nil {
		t.Fatal(err)
	}
	f := grid.NewField(enc)
	src := &Source{Center: grid.Coord{15, 15}, Radius: 1, Rate: 1, Decay: 0.01, Diffusion: 2}
	for i := 0; i < 30; i++ {
		src.Update(f)
	}
	center := f.AtCoord(grid.Coord{15, 15})
	near := f.AtCoord(grid.Coord{20, 15})
	far := f.AtCoord(grid.Coord{28, 15})
	if !(center > near && near > far) {
		t.Fatalf("no gradient: %v %v %v", center, near, far)
	}
}

func TestFieldAndMarkers(t *testing.T) {
	sim, err := core.New("chemotaxis", map[string]string{"w": "60", "h": "60", "cells": "3", "radius": "4", "warmup": "5"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s := sim.(*cpmsim.Sim)
	mask := s.FieldMask()
	if len(mask) != 60*60 {
		t.Fatalf("mask has %d entries", len(mask))
	}
	hi := float32(0)
	for _, v := range mask {
		if v < 0 || v > 1 {
			t.Fatalf("mask value %v outside [0, 1]", v)
		}
		hi = max(hi, v)
	}
	if hi != 1 {
		t.Fatalf("mask peak %v, want 1", hi)
	}
	s.Step()
	markers := s.Markers()
	if len(markers) != 3 {
		t.Fatalf("%d markers, want 3", len(markers))
	}
	for _, m := range markers {
		if m.DX == 0 && m.DY == 0 {
			t.Fatalf("marker %+v has no direction after a step", m)
		}
	}
}
