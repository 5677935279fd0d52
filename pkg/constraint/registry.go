// Package constraint holds the CPM energy terms and rules, plus the
// descriptor builder that turns named parameter sets into attached
// constraints.
package constraint

import (
	"fmt"
	"slices"
	"sort"

	"cellpotts/pkg/cpm"
)

// Descriptor names a registered constraint type and its parameters.
type Descriptor struct {
	Type   string
	Params Params
}

// Factory builds a constraint from raw parameters. Shape checks that depend
// on the engine happen later, when the constraint is attached.
type Factory func(p Params) (cpm.Constraint, error)

var registry = map[string]Factory{}

// Register makes a constraint type available to Build. It panics on a
// duplicate name, mirroring init-time registration mistakes.
func Register(name string, f Factory) {
	if _, dup := registry[name]; dup {
		panic("constraint: duplicate registration of " + name)
	}
	registry[name] = f
}

// Types lists the registered constraint types in alphabetical order.
func Types() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build constructs every descriptor in order.
func Build(descs ...Descriptor) ([]cpm.Constraint, error) {
	out := make([]cpm.Constraint, 0, len(descs))
	for k, d := range descs {
		f, ok := registry[d.Type]
		if !ok {
			return nil, fmt.Errorf("descriptor %d: unknown constraint %q (have %v)", k, d.Type, Types())
		}
		c, err := f(d.Params)
		if err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", k, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Attach builds descs and attaches them to e in order. Nothing is attached
// when any descriptor fails to build.
func Attach(e *cpm.Engine, descs ...Descriptor) ([]cpm.Constraint, error) {
	cs, err := Build(descs...)
	if err != nil {
		return nil, err
	}
	for k, c := range cs {
		if err := e.Attach(c); err != nil {
			return slices.Clip(cs[:k]), fmt.Errorf("descriptor %d: %w", k, err)
		}
	}
	return cs, nil
}
