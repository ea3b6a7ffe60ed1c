package terrain

import (
	"errors"
	"fmt"
	"strings"

	"stellarator/internal/core"
)

// Stack is the ordered list of live mods for one body.
type Stack struct {
	Mods []core.Mod
}

// Len returns the number of mods in the stack.
func (s *Stack) Len() int { return len(s.Mods) }

// Append adds m at the end of the stack.
func (s *Stack) Append(m core.Mod) { s.Mods = append(s.Mods, m) }

// OfType returns the mods of the given type in stack order.
func (s *Stack) OfType(name string) []core.Mod {
	var out []core.Mod
	for _, m := range s.Mods {
		if m.Type() == name {
			out = append(out, m)
		}
	}
	return out
}

// Enabled returns the mods that take part in sampling.
func (s *Stack) Enabled() []core.Mod {
	out := make([]core.Mod, 0, len(s.Mods))
	for _, m := range s.Mods {
		if m.Enabled() {
			out = append(out, m)
		}
	}
	return out
}

// Setup prepares every enabled mod for sampling. Mods whose setup fails are
// disabled and reported in the joined error; the rest stay usable.
func (s *Stack) Setup(sphere core.Sphere) error {
	var errs []error
	for i, m := range s.Mods {
		if !m.Enabled() {
			continue
		}
		if err := m.Setup(sphere); err != nil {
			m.SetEnabled(false)
			errs = append(errs, fmt.Errorf("mod %d (%s %q): %w", i, m.Type(), m.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Summary lists the stack as "Type[name]" entries.
func (s *Stack) Summary() string {
	parts := make([]string, 0, len(s.Mods))
	for _, m := range s.Mods {
		p := m.Type()
		if m.Name() != "" {
			p += "[" + m.Name() + "]"
		}
		if !m.Enabled() {
			p += "(disabled)"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}
