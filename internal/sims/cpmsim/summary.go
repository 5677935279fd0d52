package cpmsim

import (
	"fmt"

	"cellpotts/pkg/cpm"
	"cellpotts/pkg/stats"
)

// Summary condenses the engine state for logs, sweeps and stream clients.
type Summary struct {
	Scenario    string  `json:"scenario"`
	Time        int     `json:"time"`
	Temperature float64 `json:"temperature"`
	Cells       int     `json:"cells"`
	MeanVolume  float64 `json:"meanVolume"`
	// Fragmented counts cells split into more than one Moore component.
	Fragmented int     `json:"fragmented"`
	Attempts   uint64  `json:"attempts"`
	Accepted   uint64  `json:"accepted"`
	Acceptance float64 `json:"acceptance"`
}

// Summarize computes a Summary of e.
func Summarize(name string, e *cpm.Engine) Summary {
	c := e.Counters()
	s := Summary{
		Scenario:    name,
		Time:        e.Time(),
		Temperature: e.Temperature(),
		Attempts:    c.Attempts,
		Accepted:    c.Accepted,
	}
	if c.Attempts > 0 {
		s.Acceptance = float64(c.Accepted) / float64(c.Attempts)
	}
	total := 0
	for _, id := range e.CellIDs() {
		vol, _ := e.VolumeOf(id)
		total += vol
		s.Cells++
	}
	if s.Cells > 0 {
		s.MeanVolume = float64(total) / float64(s.Cells)
	}
	for _, parts := range stats.CachedConnectedComponents(e) {
		if len(parts) > 1 {
			s.Fragmented++
		}
	}
	return s
}

// Summary summarizes the running engine.
func (s *Sim) Summary() Summary { return Summarize(s.sc.Name, s.engine) }

func (s Summary) String() string {
	return fmt.Sprintf("%s t=%d T=%.1f cells=%d vol=%.1f split=%d acc=%.3f",
		s.Scenario, s.Time, s.Temperature, s.Cells, s.MeanVolume, s.Fragmented, s.Acceptance)
}
