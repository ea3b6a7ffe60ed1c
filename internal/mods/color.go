package mods

import "stellarator/internal/core"

func init() {
	core.Register(core.ModType{
		Name: "VertexColorSolid",
		New:  func() core.Mod { return NewVertexColorSolid() },
		Params: map[string]core.Setter{
			"color": core.ColorParam(func(m *VertexColorSolid) *core.Color { return &m.Color }),
			"blend": core.FloatParam(func(m *VertexColorSolid) *float64 { return &m.Blend }),
		},
	})
	core.Register(core.ModType{
		Name: "VertexSimplexNoiseColor",
		New:  func() core.Mod { return NewVertexSimplexNoiseColor() },
		Params: map[string]core.Setter{
			"colorStart":  core.ColorParam(func(m *VertexSimplexNoiseColor) *core.Color { return &m.ColorStart }),
			"colorEnd":    core.ColorParam(func(m *VertexSimplexNoiseColor) *core.Color { return &m.ColorEnd }),
			"blend":       core.FloatParam(func(m *VertexSimplexNoiseColor) *float64 { return &m.Blend }),
			"frequency":   core.FloatParam(func(m *VertexSimplexNoiseColor) *float64 { return &m.Frequency }),
			"persistence": core.FloatParam(func(m *VertexSimplexNoiseColor) *float64 { return &m.Persistence }),
			"octaves":     core.IntParam(func(m *VertexSimplexNoiseColor) *int { return &m.Octaves }),
			"seed":        core.IntParam(func(m *VertexSimplexNoiseColor) *int { return &m.Seed }),
		},
	})
}

// VertexColorSolid blends one color over the surface.
type VertexColorSolid struct {
	core.ModBase
	Color core.Color
	Blend float64
}

func NewVertexColorSolid() *VertexColorSolid {
	return &VertexColorSolid{ModBase: core.NewModBase(), Color: core.White, Blend: 1}
}

func (m *VertexColorSolid) Type() string { return "VertexColorSolid" }

func (m *VertexColorSolid) OnBuildVertex(s *core.Sample) {
	s.Color = s.Color.Lerp(m.Color, m.Blend)
}

// VertexSimplexNoiseColor blends between two colors driven by simplex noise.
type VertexSimplexNoiseColor struct {
	core.ModBase
	ColorStart  core.Color
	ColorEnd    core.Color
	Blend       float64
	Frequency   float64
	Octaves     int
	Persistence float64
	Seed        int

	noise *octaveNoise
}

func NewVertexSimplexNoiseColor() *VertexSimplexNoiseColor {
	return &VertexSimplexNoiseColor{
		ModBase:     core.NewModBase(),
		ColorStart:  core.Color{R: 0, G: 0, B: 0, A: 1},
		ColorEnd:    core.White,
		Blend:       1,
		Frequency:   6,
		Octaves:     4,
		Persistence: 0.5,
	}
}

func (m *VertexSimplexNoiseColor) Type() string { return "VertexSimplexNoiseColor" }

func (m *VertexSimplexNoiseColor) Setup(core.Sphere) error {
	m.noise = newOctaveNoise(int64(m.Seed), m.Frequency, m.Octaves, m.Persistence)
	return nil
}

func (m *VertexSimplexNoiseColor) OnBuildVertex(s *core.Sample) {
	c := m.ColorStart.Lerp(m.ColorEnd, m.noise.eval(s.Dir))
	s.Color = s.Color.Lerp(c, m.Blend)
}
