// Package preset loads the radius-scoped terrain presets and the baseline
// templates they are applied to, and selects among them for a body.
package preset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stellarator/internal/confignode"
	rng "stellarator/pkg/core"
)

// ErrNoPreset is returned when no preset covers a body's radius.
var ErrNoPreset = errors.New("no applicable preset")

// Preset is a named bundle of mod declarations for bodies whose radius lies in
// [MinRadius, MaxRadius).
type Preset struct {
	Name      string
	MinRadius float64
	MaxRadius float64
	Mods      *confignode.Node
}

// Contains reports whether radius falls inside the preset's range.
func (p Preset) Contains(radius float64) bool {
	return p.MinRadius <= radius && radius < p.MaxRadius
}

// Library is an ordered collection of presets.
type Library struct {
	Presets []Preset
}

// LoadLibrary reads every PQSPreset node below root.
func LoadLibrary(root *confignode.Node) (*Library, error) {
	lib := &Library{}
	for i, n := range root.GetNodes("PQSPreset") {
		p, err := parsePreset(n)
		if err != nil {
			return nil, fmt.Errorf("preset %d: %w", i, err)
		}
		if p.Name == "" {
			p.Name = "preset" + strconv.Itoa(i)
		}
		lib.Presets = append(lib.Presets, p)
	}
	return lib, nil
}

// LoadLibraryFile parses a preset document from disk.
func LoadLibraryFile(path string) (*Library, error) {
	root, err := confignode.Load(path)
	if err != nil {
		return nil, err
	}
	return LoadLibrary(root)
}

func parsePreset(n *confignode.Node) (Preset, error) {
	p := Preset{Mods: n.GetNode("Mods")}
	p.Name, _ = n.GetValue("name")
	var err error
	if p.MinRadius, err = floatValue(n, "minRadius"); err != nil {
		return p, err
	}
	if p.MaxRadius, err = floatValue(n, "maxRadius"); err != nil {
		return p, err
	}
	if p.Mods == nil {
		p.Mods = confignode.New("Mods")
	}
	return p, nil
}

func floatValue(n *confignode.Node, key string) (float64, error) {
	raw, ok := n.GetValue(key)
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// Candidates returns the presets whose range contains radius, in library order.
func (l *Library) Candidates(radius float64) []Preset {
	var out []Preset
	for _, p := range l.Presets {
		if p.Contains(radius) {
			out = append(out, p)
		}
	}
	return out
}

// Select picks one applicable preset uniformly at random. Exactly one draw is
// taken from r when at least one preset applies and none otherwise.
func (l *Library) Select(radius float64, r rng.Random) (Preset, error) {
	c := l.Candidates(radius)
	if len(c) == 0 {
		return Preset{}, fmt.Errorf("radius %g: %w", radius, ErrNoPreset)
	}
	return c[r.IntN(len(c))], nil
}
