package app

import (
	"flag"

	"cellpotts/internal/core"
)

// Config represents the viewer parameters. Defaults are overridden by
// CPM_* environment variables, which are in turn overridden by flags.
type Config struct {
	Sim      string         `env:"CPM_SIM"`
	Scale    int            `env:"CPM_SCALE"`
	SPS      int            `env:"CPM_SPS"`
	Seed     int64          `env:"CPM_SEED"`
	HUDWidth int            `env:"CPM_HUD_WIDTH"`
	Set      core.Overrides `env:"CPM_SET"`
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "cellsort", Scale: 4, SPS: 30, HUDWidth: 260, Set: core.Overrides{}}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "scenario to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.SPS, "sps", c.SPS, "Monte Carlo steps per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for the first reset, 0 keeps the scenario seed")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "width of the parameter panel, 0 hides it")
	fs.Var(c.Set, "set", "scenario override key=value, repeatable")
}
