package mods

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/mazznoer/colorgrad"

	"stellarator/internal/core"
)

func init() {
	core.Register(core.ModType{
		Name: "AltitudeGradient",
		New:  func() core.Mod { return NewAltitudeGradient() },
		Params: map[string]core.Setter{
			"colors":      colorsParam,
			"positions":   positionsParam,
			"blend":       core.FloatParam(func(m *AltitudeGradient) *float64 { return &m.Blend }),
			"minAltitude": core.FloatParam(func(m *AltitudeGradient) *float64 { return &m.MinAltitude }),
			"maxAltitude": core.FloatParam(func(m *AltitudeGradient) *float64 { return &m.MaxAltitude }),
		},
	})
}

// AltitudeGradient maps the fractional altitude through a multi-stop color
// gradient.
type AltitudeGradient struct {
	core.ModBase
	Colors      []core.Color
	Positions   []float64
	Blend       float64
	MinAltitude float64
	MaxAltitude float64

	grad colorgrad.Gradient
}

func NewAltitudeGradient() *AltitudeGradient {
	return &AltitudeGradient{
		ModBase:     core.NewModBase(),
		Colors:      []core.Color{{R: 0.2, G: 0.2, B: 0.2, A: 1}, core.White},
		Blend:       1,
		MaxAltitude: 1,
	}
}

func (m *AltitudeGradient) Type() string { return "AltitudeGradient" }

func (m *AltitudeGradient) Setup(core.Sphere) error {
	if m.MaxAltitude <= m.MinAltitude {
		return fmt.Errorf("maxAltitude %g must exceed minAltitude %g", m.MaxAltitude, m.MinAltitude)
	}
	b := colorgrad.NewGradient()
	stops := make([]color.Color, len(m.Colors))
	for i, c := range m.Colors {
		stops[i] = c.NRGBA()
	}
	b.Colors(stops...)
	if len(m.Positions) > 0 {
		if len(m.Positions) != len(m.Colors) {
			return fmt.Errorf("%d positions for %d colors", len(m.Positions), len(m.Colors))
		}
		b.Domain(m.Positions...)
	}
	grad, err := b.Build()
	if err != nil {
		return fmt.Errorf("build gradient: %w", err)
	}
	m.grad = grad
	return nil
}

func (m *AltitudeGradient) OnBuildVertex(s *core.Sample) {
	t := (s.Altitude() - m.MinAltitude) / (m.MaxAltitude - m.MinAltitude)
	if len(m.Positions) > 0 {
		t = m.Positions[0] + core.Clamp01(t)*(m.Positions[len(m.Positions)-1]-m.Positions[0])
	} else {
		t = core.Clamp01(t)
	}
	c := m.grad.At(t)
	s.Color = s.Color.Lerp(core.Color{R: c.R, G: c.G, B: c.B, A: 1}, m.Blend)
}

func colorsParam(m core.Mod, v core.Value) error {
	g, ok := m.(*AltitudeGradient)
	if !ok {
		return fmt.Errorf("mod %s does not accept colors", m.Type())
	}
	var out []core.Color
	for _, part := range strings.Split(v.String(), ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := core.ParseColor(part)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	if len(out) < 2 {
		return fmt.Errorf("gradient needs at least 2 colors, got %d", len(out))
	}
	g.Colors = out
	return nil
}

func positionsParam(m core.Mod, v core.Value) error {
	g, ok := m.(*AltitudeGradient)
	if !ok {
		return fmt.Errorf("mod %s does not accept positions", m.Type())
	}
	var out []float64
	for _, part := range strings.Split(v.String(), ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("parse position %q: %w", part, err)
		}
		if len(out) > 0 && f < out[len(out)-1] {
			return fmt.Errorf("positions must be ascending")
		}
		out = append(out, f)
	}
	g.Positions = out
	return nil
}
