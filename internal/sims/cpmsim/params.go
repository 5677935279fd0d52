package cpmsim

import (
	"strconv"

	"cellpotts/internal/core"
)

func (s *Sim) Parameters() core.ParameterSnapshot {
	e := s.engine
	c := e.Counters()
	ratio := 0.0
	if c.Attempts > 0 {
		ratio = float64(c.Accepted) / float64(c.Attempts)
	}
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				core.IntParam("w", "Width", s.frame.W),
				core.IntParam("h", "Height", s.frame.H),
				core.StringParam("torus", "Torus", torusString(s.cfg.Torus)),
				core.Int64Param("seed", "Seed", e.Seed()),
			},
		},
		{
			Name: "Engine",
			Params: []core.Parameter{
				core.FloatParam("temperature", "Temperature", e.Temperature()),
				core.IntParam("mcs", "Monte Carlo steps", e.Time()),
				core.IntParam("cells", "Live cells", len(e.CellIDs())),
				core.FloatParam("acceptance", "Acceptance ratio", ratio),
			},
		},
	}
	if len(s.params) > 0 {
		groups = append(groups, core.ParameterGroup{Name: "Scenario", Params: s.params})
	}
	return core.ParameterSnapshot{Groups: groups}
}

func (s *Sim) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{
			Key:    "temperature",
			Label:  "Temperature",
			Type:   core.ParamTypeFloat,
			Step:   1,
			Min:    1,
			HasMin: true,
			Max:    500,
			HasMax: true,
		},
	}
}

// SetFloatParameter updates the temperature of the running engine. The new
// value also applies after a reset.
func (s *Sim) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "temperature":
		if err := s.engine.SetTemperature(value); err != nil {
			return false
		}
		s.cfg.Temperature = value
		return true
	default:
		return false
	}
}

func torusString(torus []bool) string {
	if torus == nil {
		return "true"
	}
	out := ""
	for d, t := range torus {
		if d > 0 {
			out += ","
		}
		out += strconv.FormatBool(t)
	}
	return out
}
