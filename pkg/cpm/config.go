package cpm

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Config describes the grid and thermodynamics of an engine.
type Config struct {
	// Extents holds 2 or 3 per-dimension sizes.
	Extents []int
	// Torus holds one wrap flag per dimension; nil wraps everywhere.
	Torus []bool
	// Temperature scales the acceptance probability of unfavourable copies.
	Temperature float64
	// Seed initialises the shared RNG; 0 draws a random seed.
	Seed int64
	// Kinds is the number of cell kinds including the background.
	Kinds int
	// MaxCellID bounds the CellID space; 0 means the full uint32 range.
	MaxCellID CellID
}

// DefaultConfig returns a 2D torus with one cell kind besides the medium.
func DefaultConfig() Config {
	return Config{
		Extents:     []int{100, 100},
		Temperature: 20,
		Kinds:       2,
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	return DefaultConfig().Apply(cfg)
}

// Apply returns a copy of c overridden by the keys of cfg that parse.
func (c Config) Apply(cfg map[string]string) Config {
	c.Extents = slices.Clone(c.Extents)
	c.Torus = slices.Clone(c.Torus)
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Extents[0] = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Extents[1] = parsed
		}
	}
	if v, ok := cfg["d"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Extents = append(c.Extents[:2], parsed)
		}
	}
	if v, ok := cfg["temperature"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Temperature = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["kinds"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 2 {
			c.Kinds = parsed
		}
	}
	if v, ok := cfg["torus"]; ok {
		var flags []bool
		for _, part := range strings.Split(v, ",") {
			parsed, err := strconv.ParseBool(strings.TrimSpace(part))
			if err != nil {
				flags = nil
				break
			}
			flags = append(flags, parsed)
		}
		switch len(flags) {
		case 1:
			c.Torus = make([]bool, len(c.Extents))
			for d := range c.Torus {
				c.Torus[d] = flags[0]
			}
		case len(c.Extents):
			c.Torus = flags
		}
	}
	return c
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	if len(c.Extents) != 2 && len(c.Extents) != 3 {
		return fmt.Errorf("%w: extents %v must have 2 or 3 dimensions", ErrInvalidConfig, c.Extents)
	}
	if c.Torus != nil && len(c.Torus) != len(c.Extents) {
		return fmt.Errorf("%w: torus %v does not match extents %v", ErrInvalidConfig, c.Torus, c.Extents)
	}
	if !(c.Temperature > 0) || math.IsInf(c.Temperature, 0) {
		return fmt.Errorf("%w: temperature %v must be positive and finite", ErrInvalidConfig, c.Temperature)
	}
	if c.Kinds < 2 || c.Kinds > math.MaxUint8+1 {
		return fmt.Errorf("%w: kinds %d must be in [2, 256]", ErrInvalidConfig, c.Kinds)
	}
	return nil
}
