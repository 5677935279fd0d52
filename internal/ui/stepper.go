package ui

import (
	"math"
	"strconv"

	"cellpotts/internal/core"
)

// coarseFactor multiplies a control's step while shift is held.
const coarseFactor = 10

// stepper turns a float control into bounded -/+ adjustments.
type stepper struct {
	ctrl core.ParameterControl
}

func (s stepper) step(coarse bool) float64 {
	step := s.ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	if coarse {
		step *= coarseFactor
	}
	return step
}

// next returns the clamped value one step away from v and whether it
// differs from v.
func (s stepper) next(v float64, dir int, coarse bool) (float64, bool) {
	if dir == 0 {
		return v, false
	}
	target := v + float64(dir)*s.step(coarse)
	if s.ctrl.HasMin && target < s.ctrl.Min {
		target = s.ctrl.Min
	}
	if s.ctrl.HasMax && target > s.ctrl.Max {
		target = s.ctrl.Max
	}
	return target, math.Abs(target-v) > 1e-9
}

func (s stepper) format(v float64) string {
	step := s.step(false)
	precision := 0
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	case step < 1:
		precision = 1
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// series keeps the most recent samples of a snapshot value for the
// panel's trace, oldest first.
type series struct {
	buf  []float64
	next int
	full bool
}

func newSeries(n int) *series {
	if n < 1 {
		n = 1
	}
	return &series{buf: make([]float64, n)}
}

func (s *series) push(v float64) {
	s.buf[s.next] = v
	s.next++
	if s.next == len(s.buf) {
		s.next = 0
		s.full = true
	}
}

func (s *series) values() []float64 {
	if !s.full {
		return append([]float64(nil), s.buf[:s.next]...)
	}
	out := make([]float64, 0, len(s.buf))
	out = append(out, s.buf[s.next:]...)
	return append(out, s.buf[:s.next]...)
}

// snapshotFloat reads key from snap as a float.
func snapshotFloat(snap core.ParameterSnapshot, key string) (float64, bool) {
	p, ok := snap.Lookup(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
