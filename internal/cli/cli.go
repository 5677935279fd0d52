// Package cli loads command configuration from the environment and flags.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Binder is a pointer to a configuration struct that registers its flags.
type Binder interface {
	Bind(fs *flag.FlagSet)
}

// ParseConfigFromArgs loads env defaults into cfg, binds its flags and
// parses args, so flags win over the environment.
func ParseConfigFromArgs(cfg Binder, fs *flag.FlagSet, args []string) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	cfg.Bind(fs)
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Floats is a comma separated list of numbers usable as a flag and as an
// env field.
type Floats []float64

func (f *Floats) String() string {
	if f == nil {
		return ""
	}
	parts := make([]string, len(*f))
	for i, v := range *f {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Set replaces the list.
func (f *Floats) Set(v string) error {
	var out Floats
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		x, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return fmt.Errorf("%q: %w", part, err)
		}
		out = append(out, x)
	}
	*f = out
	return nil
}

// UnmarshalText lets env parse the list.
func (f *Floats) UnmarshalText(b []byte) error { return f.Set(string(b)) }
