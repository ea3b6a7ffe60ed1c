package preset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stellarator/internal/confignode"
	rng "stellarator/pkg/core"
)

// ErrNoTemplate is returned when a template library cannot serve a request.
var ErrNoTemplate = errors.New("no template")

// Template is a stock body whose baseline mod stack presets are reconciled onto.
type Template struct {
	Name          string
	Radius        float64
	RadiusDelta   float64
	HasAtmosphere bool
	HasOcean      bool
	GasGiant      bool
	// RemoveAllMods discards the baseline stack before presets are applied.
	RemoveAllMods bool
	Mods          *confignode.Node
}

// Templates is an ordered template library.
type Templates struct {
	List []Template
}

// LoadTemplates reads every Template node below root.
func LoadTemplates(root *confignode.Node) (*Templates, error) {
	ts := &Templates{}
	for i, n := range root.GetNodes("Template") {
		t := Template{Mods: n.GetNode("Mods")}
		t.Name, _ = n.GetValue("name")
		if t.Name == "" {
			return nil, fmt.Errorf("template %d: missing name", i)
		}
		var err error
		if t.Radius, err = floatValue(n, "radius"); err != nil {
			return nil, fmt.Errorf("template %s: %w", t.Name, err)
		}
		if raw, ok := n.GetValue("radiusDelta"); ok {
			if t.RadiusDelta, err = strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
				return nil, fmt.Errorf("template %s: radiusDelta: %w", t.Name, err)
			}
		}
		t.HasAtmosphere = boolValue(n, "atmosphere")
		t.HasOcean = boolValue(n, "ocean")
		t.GasGiant = boolValue(n, "gasGiant")
		t.RemoveAllMods = boolValue(n, "removeAllPQSMods")
		if t.Mods == nil {
			t.Mods = confignode.New("Mods")
		}
		ts.List = append(ts.List, t)
	}
	return ts, nil
}

// LoadTemplatesFile parses a template document from disk.
func LoadTemplatesFile(path string) (*Templates, error) {
	root, err := confignode.Load(path)
	if err != nil {
		return nil, err
	}
	return LoadTemplates(root)
}

func boolValue(n *confignode.Node, key string) bool {
	raw, _ := n.GetValue(key)
	b, _ := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
	return b
}

// Get returns the template with the given name.
func (ts *Templates) Get(name string) (Template, bool) {
	for _, t := range ts.List {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Pick chooses a rocky template. Atmospheric bodies only draw from templates
// that carry an atmosphere; everything else draws from all rocky templates.
func (ts *Templates) Pick(atmosphere bool, r rng.Random) (Template, error) {
	var pool []Template
	for _, t := range ts.List {
		if t.GasGiant {
			continue
		}
		if atmosphere && !t.HasAtmosphere {
			continue
		}
		pool = append(pool, t)
	}
	if len(pool) == 0 {
		return Template{}, fmt.Errorf("atmosphere=%v: %w", atmosphere, ErrNoTemplate)
	}
	return pool[r.IntN(len(pool))], nil
}

// GasGiant returns the first gas giant template.
func (ts *Templates) GasGiant() (Template, error) {
	for _, t := range ts.List {
		if t.GasGiant {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("gas giant: %w", ErrNoTemplate)
}
