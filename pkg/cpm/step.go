package cpm

import (
	"math"

	"cellpotts/pkg/grid"
)

// Step runs one Monte Carlo step. The virtual clock advances by one over the
// border size at the moment of each attempt, so the number of attempts per
// step depends on how the border evolves during the step.
func (e *Engine) Step() {
	clock := 0.0
	for clock < 1 {
		n := e.border.Len()
		if n == 0 {
			break
		}
		tgt := e.border.Sample(e.rng)
		e.nb = e.grid.Neighbors(tgt, e.nb[:0])
		src := e.nb[e.rng.IntN(len(e.nb))]
		clock += 1 / float64(n)
		e.attempt(src, tgt)
	}
	e.invalidate()
	for _, l := range e.onStep {
		l.StepComplete(e)
	}
	e.time++
	e.invalidate()
}

// Run performs n Monte Carlo steps.
func (e *Engine) Run(n int) {
	for k := 0; k < n; k++ {
		e.Step()
	}
}

func (e *Engine) attempt(src, tgt grid.Index) bool {
	srcID, tgtID := e.grid.At(src), e.grid.At(tgt)
	if srcID == tgtID {
		return false
	}
	e.counters.Attempts++
	if !e.admissible(src, tgt, srcID, tgtID) {
		return false
	}
	if !e.Accept(e.deltaH(src, tgt, srcID, tgtID)) {
		return false
	}
	e.counters.Accepted++
	e.setPixel(tgt, srcID)
	return true
}

// Accept applies the Metropolis rule at the current temperature.
func (e *Engine) Accept(dH float64) bool {
	if dH < 0 {
		return true
	}
	return e.rng.Float64() < math.Exp(-dH/e.cfg.Temperature)
}

// DeltaH sums every soft constraint for copying the owner of src into tgt.
func (e *Engine) DeltaH(src, tgt grid.Index) float64 {
	return e.deltaH(src, tgt, e.grid.At(src), e.grid.At(tgt))
}

// Admissible evaluates every hard constraint for copying src into tgt.
func (e *Engine) Admissible(src, tgt grid.Index) bool {
	return e.admissible(src, tgt, e.grid.At(src), e.grid.At(tgt))
}

func (e *Engine) deltaH(src, tgt grid.Index, srcID, tgtID CellID) float64 {
	dH := 0.0
	for _, c := range e.soft {
		dH += c.DeltaH(e, src, tgt, srcID, tgtID)
	}
	return dH
}

func (e *Engine) admissible(src, tgt grid.Index, srcID, tgtID CellID) bool {
	for _, c := range e.hard {
		if !c.Fulfilled(e, src, tgt, srcID, tgtID) {
			return false
		}
	}
	return true
}
