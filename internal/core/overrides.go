package core

import (
	"fmt"
	"sort"
	"strings"
)

// Overrides collects key=value pairs handed to a simulation factory. It
// implements flag.Value so it can be repeated on the command line.
type Overrides map[string]string

func (o Overrides) String() string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + o[k]
	}
	return strings.Join(parts, ",")
}

// Set parses comma separated key=value pairs. A part without "=" extends
// the previous value, so list values such as torus=true,false survive.
func (o Overrides) Set(v string) error {
	last := ""
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			if last == "" {
				return fmt.Errorf("override %q: want key=value", part)
			}
			o[last] += "," + part
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("override %q: want key=value", part)
		}
		o[key] = strings.TrimSpace(value)
		last = key
	}
	return nil
}

// UnmarshalText lets env fill the map with the same syntax as the flag.
func (o *Overrides) UnmarshalText(b []byte) error {
	if *o == nil {
		*o = Overrides{}
	}
	return o.Set(string(b))
}
