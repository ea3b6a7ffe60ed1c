package mods

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stellarator/internal/confignode"
	"stellarator/internal/core"
)

func init() {
	core.Register(core.ModType{
		Name: "HeightColorMap",
		New:  func() core.Mod { return NewHeightColorMap() },
		Params: map[string]core.Setter{
			"blend":       core.FloatParam(func(m *HeightColorMap) *float64 { return &m.Blend }),
			"LandClasses": core.NodeParam(func(m *HeightColorMap, n *confignode.Node) error { return m.Classes.load(n) }),
		},
	})
	core.Register(core.ModType{
		Name: "HeightColorMap2",
		New:  func() core.Mod { return NewHeightColorMap2() },
		Params: map[string]core.Setter{
			"blend":       core.FloatParam(func(m *HeightColorMap2) *float64 { return &m.Blend }),
			"minHeight":   core.FloatParam(func(m *HeightColorMap2) *float64 { return &m.MinHeight }),
			"maxHeight":   core.FloatParam(func(m *HeightColorMap2) *float64 { return &m.MaxHeight }),
			"LandClasses": core.NodeParam(func(m *HeightColorMap2, n *confignode.Node) error { return m.Classes.load(n) }),
		},
	})
}

// LandClass colors the altitude band [AltStart, AltEnd).
type LandClass struct {
	Name       string
	Color      core.Color
	AltStart   float64
	AltEnd     float64
	LerpToNext bool
}

// LandClasses is an ordered list of altitude bands.
type LandClasses []LandClass

func (lc *LandClasses) load(n *confignode.Node) error {
	var out LandClasses
	var errs []error
	for i, c := range n.Nodes {
		class := LandClass{Name: "class", Color: core.White}
		if v, ok := c.GetValue("name"); ok {
			class.Name = v
		}
		if v, ok := c.GetValue("color"); ok {
			col, err := core.ParseColor(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("land class %d: %w", i, err))
			}
			class.Color = col
		}
		for _, f := range []struct {
			key string
			dst *float64
		}{{"altitudeStart", &class.AltStart}, {"altitudeEnd", &class.AltEnd}} {
			if v, ok := c.GetValue(f.key); ok {
				x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
				if err != nil {
					errs = append(errs, fmt.Errorf("land class %d: %s: %w", i, f.key, err))
				}
				*f.dst = x
			}
		}
		if v, ok := c.GetValue("lerpToNext"); ok {
			b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
			if err != nil {
				errs = append(errs, fmt.Errorf("land class %d: lerpToNext: %w", i, err))
			}
			class.LerpToNext = b
		}
		out = append(out, class)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	// An empty list keeps the previous classes.
	if len(out) > 0 {
		*lc = out
	}
	return nil
}

// At returns the color for a fractional altitude and whether any band covers it.
func (lc LandClasses) At(alt float64) (core.Color, bool) {
	for i, c := range lc {
		if alt < c.AltStart || alt >= c.AltEnd {
			continue
		}
		if c.LerpToNext && i+1 < len(lc) {
			t := (alt - c.AltStart) / (c.AltEnd - c.AltStart)
			return c.Color.Lerp(lc[i+1].Color, t), true
		}
		return c.Color, true
	}
	return core.Color{}, false
}

// HeightColorMap colors by altitude as a fraction of the sphere's radius delta.
type HeightColorMap struct {
	core.ModBase
	Blend   float64
	Classes LandClasses
}

func NewHeightColorMap() *HeightColorMap {
	return &HeightColorMap{ModBase: core.NewModBase(), Blend: 1}
}

func (m *HeightColorMap) Type() string { return "HeightColorMap" }

func (m *HeightColorMap) OnBuildVertex(s *core.Sample) {
	if c, ok := m.Classes.At(s.Altitude()); ok {
		s.Color = s.Color.Lerp(c, m.Blend)
	}
}

// HeightColorMap2 colors by displacement mapped from [MinHeight, MaxHeight]
// onto [0, 1].
type HeightColorMap2 struct {
	core.ModBase
	Blend     float64
	MinHeight float64
	MaxHeight float64
	Classes   LandClasses
}

func NewHeightColorMap2() *HeightColorMap2 {
	return &HeightColorMap2{ModBase: core.NewModBase(), Blend: 1, MaxHeight: 1}
}

func (m *HeightColorMap2) Type() string { return "HeightColorMap2" }

func (m *HeightColorMap2) Setup(core.Sphere) error {
	if m.MaxHeight <= m.MinHeight {
		return fmt.Errorf("maxHeight %g must exceed minHeight %g", m.MaxHeight, m.MinHeight)
	}
	return nil
}

func (m *HeightColorMap2) OnBuildVertex(s *core.Sample) {
	alt := (s.Displacement() - m.MinHeight) / (m.MaxHeight - m.MinHeight)
	if c, ok := m.Classes.At(alt); ok {
		s.Color = s.Color.Lerp(c, m.Blend)
	}
}
