package mods

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"stellarator/internal/core"
)

func init() {
	core.Register(core.ModType{
		Name: "VertexSimplexHeightAbsolute",
		New:  func() core.Mod { return NewVertexSimplexHeightAbsolute() },
		Params: simplexParams(func(m core.Mod) *simplexParamsSet {
			return &m.(*VertexSimplexHeightAbsolute).simplexParamsSet
		}),
	})
	core.Register(core.ModType{
		Name: "VertexSimplexHeight",
		New:  func() core.Mod { return NewVertexSimplexHeight() },
		Params: simplexParams(func(m core.Mod) *simplexParamsSet {
			return &m.(*VertexSimplexHeight).simplexParamsSet
		}),
	})
	core.Register(core.ModType{
		Name: "VertexHeightNoise",
		New:  func() core.Mod { return NewVertexHeightNoise() },
		Params: map[string]core.Setter{
			"deformity": core.FloatParam(func(m *VertexHeightNoise) *float64 { return &m.Deformity }),
			"frequency": core.FloatParam(func(m *VertexHeightNoise) *float64 { return &m.Frequency }),
			"octaves":   core.IntParam(func(m *VertexHeightNoise) *int { return &m.Octaves }),
			"alpha":     core.FloatParam(func(m *VertexHeightNoise) *float64 { return &m.Alpha }),
			"beta":      core.FloatParam(func(m *VertexHeightNoise) *float64 { return &m.Beta }),
			"seed":      core.IntParam(func(m *VertexHeightNoise) *int { return &m.Seed }),
		},
	})
	core.Register(core.ModType{
		Name: "VertexRidgedNoise",
		New:  func() core.Mod { return NewVertexRidgedNoise() },
		Params: map[string]core.Setter{
			"deformity":  core.FloatParam(func(m *VertexRidgedNoise) *float64 { return &m.Deformity }),
			"frequency":  core.FloatParam(func(m *VertexRidgedNoise) *float64 { return &m.Frequency }),
			"octaves":    core.IntParam(func(m *VertexRidgedNoise) *int { return &m.Octaves }),
			"lacunarity": core.FloatParam(func(m *VertexRidgedNoise) *float64 { return &m.Lacunarity }),
			"seed":       core.IntParam(func(m *VertexRidgedNoise) *int { return &m.Seed }),
		},
	})
	core.Register(core.ModType{
		Name: "VertexHeightOffset",
		New:  func() core.Mod { return NewVertexHeightOffset() },
		Params: map[string]core.Setter{
			"offset": core.FloatParam(func(m *VertexHeightOffset) *float64 { return &m.Offset }),
		},
	})
	core.Register(core.ModType{
		Name: "FlattenOcean",
		New:  func() core.Mod { return NewFlattenOcean() },
		Params: map[string]core.Setter{
			"oceanLevel": core.FloatParam(func(m *FlattenOcean) *float64 { return &m.OceanLevel }),
		},
	})
}

// simplexParamsSet is shared by the simplex height mods.
type simplexParamsSet struct {
	Deformity   float64
	Frequency   float64
	Octaves     int
	Persistence float64
	Seed        int

	noise *octaveNoise
}

func defaultSimplex() simplexParamsSet {
	return simplexParamsSet{Deformity: 1000, Frequency: 4, Octaves: 6, Persistence: 0.5}
}

func (p *simplexParamsSet) setup() {
	p.noise = newOctaveNoise(int64(p.Seed), p.Frequency, p.Octaves, p.Persistence)
}

func simplexParams(get func(core.Mod) *simplexParamsSet) map[string]core.Setter {
	float := func(field func(*simplexParamsSet) *float64) core.Setter {
		return func(m core.Mod, v core.Value) error {
			f, err := v.Float()
			if err != nil {
				return err
			}
			*field(get(m)) = f
			return nil
		}
	}
	integer := func(field func(*simplexParamsSet) *int) core.Setter {
		return func(m core.Mod, v core.Value) error {
			i, err := v.Int()
			if err != nil {
				return err
			}
			*field(get(m)) = i
			return nil
		}
	}
	return map[string]core.Setter{
		"deformity":   float(func(p *simplexParamsSet) *float64 { return &p.Deformity }),
		"frequency":   float(func(p *simplexParamsSet) *float64 { return &p.Frequency }),
		"persistence": float(func(p *simplexParamsSet) *float64 { return &p.Persistence }),
		"octaves":     integer(func(p *simplexParamsSet) *int { return &p.Octaves }),
		"seed":        integer(func(p *simplexParamsSet) *int { return &p.Seed }),
	}
}

// VertexSimplexHeightAbsolute raises the surface by normalized simplex noise
// scaled by Deformity. It never lowers the surface.
type VertexSimplexHeightAbsolute struct {
	core.ModBase
	simplexParamsSet
}

func NewVertexSimplexHeightAbsolute() *VertexSimplexHeightAbsolute {
	return &VertexSimplexHeightAbsolute{ModBase: core.NewModBase(), simplexParamsSet: defaultSimplex()}
}

func (m *VertexSimplexHeightAbsolute) Type() string { return "VertexSimplexHeightAbsolute" }

func (m *VertexSimplexHeightAbsolute) Setup(core.Sphere) error {
	m.setup()
	return nil
}

func (m *VertexSimplexHeightAbsolute) OnBuildHeight(s *core.Sample) {
	s.Height += m.noise.eval(s.Dir) * m.Deformity
}

// VertexSimplexHeight adds signed simplex noise, so it can carve below the
// current surface as well as raise it.
type VertexSimplexHeight struct {
	core.ModBase
	simplexParamsSet
}

func NewVertexSimplexHeight() *VertexSimplexHeight {
	return &VertexSimplexHeight{ModBase: core.NewModBase(), simplexParamsSet: defaultSimplex()}
}

func (m *VertexSimplexHeight) Type() string { return "VertexSimplexHeight" }

func (m *VertexSimplexHeight) Setup(core.Sphere) error {
	m.setup()
	return nil
}

func (m *VertexSimplexHeight) OnBuildHeight(s *core.Sample) {
	s.Height += m.noise.signed(s.Dir) * m.Deformity
}

// VertexHeightNoise adds Perlin noise.
type VertexHeightNoise struct {
	core.ModBase
	Deformity float64
	Frequency float64
	Octaves   int
	Alpha     float64
	Beta      float64
	Seed      int

	p *perlin.Perlin
}

func NewVertexHeightNoise() *VertexHeightNoise {
	return &VertexHeightNoise{
		ModBase:   core.NewModBase(),
		Deformity: 500,
		Frequency: 8,
		Octaves:   4,
		Alpha:     2,
		Beta:      2,
	}
}

func (m *VertexHeightNoise) Type() string { return "VertexHeightNoise" }

func (m *VertexHeightNoise) Setup(core.Sphere) error {
	n := m.Octaves
	if n < 1 {
		n = 1
	}
	m.p = perlin.NewPerlin(m.Alpha, m.Beta, int32(n), int64(m.Seed))
	return nil
}

func (m *VertexHeightNoise) OnBuildHeight(s *core.Sample) {
	f := m.Frequency
	s.Height += m.p.Noise3D(s.Dir[0]*f, s.Dir[1]*f, s.Dir[2]*f) * m.Deformity
}

// VertexRidgedNoise adds ridged multifractal noise, producing sharp crests.
type VertexRidgedNoise struct {
	core.ModBase
	Deformity  float64
	Frequency  float64
	Octaves    int
	Lacunarity float64
	Seed       int

	os opensimplex.Noise
}

func NewVertexRidgedNoise() *VertexRidgedNoise {
	return &VertexRidgedNoise{ModBase: core.NewModBase(), Deformity: 800, Frequency: 3, Octaves: 5, Lacunarity: 2}
}

func (m *VertexRidgedNoise) Type() string { return "VertexRidgedNoise" }

func (m *VertexRidgedNoise) Setup(core.Sphere) error {
	m.os = opensimplex.New(int64(m.Seed))
	return nil
}

func (m *VertexRidgedNoise) OnBuildHeight(s *core.Sample) {
	var sum, total float64
	amp, f := 1.0, m.Frequency
	for i := 0; i < max(m.Octaves, 1); i++ {
		r := 1 - math.Abs(m.os.Eval3(s.Dir[0]*f, s.Dir[1]*f, s.Dir[2]*f))
		sum += r * r * amp
		total += amp
		amp *= 0.5
		f *= m.Lacunarity
	}
	s.Height += sum / total * m.Deformity
}

// VertexHeightOffset shifts every height by a constant.
type VertexHeightOffset struct {
	core.ModBase
	Offset float64
}

func NewVertexHeightOffset() *VertexHeightOffset {
	return &VertexHeightOffset{ModBase: core.NewModBase()}
}

func (m *VertexHeightOffset) Type() string { return "VertexHeightOffset" }

func (m *VertexHeightOffset) OnBuildHeight(s *core.Sample) { s.Height += m.Offset }

// FlattenOcean lifts everything below sea level onto it. OceanLevel is
// measured from the base radius.
type FlattenOcean struct {
	core.ModBase
	OceanLevel float64
}

func NewFlattenOcean() *FlattenOcean {
	return &FlattenOcean{ModBase: core.NewModBase()}
}

func (m *FlattenOcean) Type() string { return "FlattenOcean" }

func (m *FlattenOcean) OnBuildHeight(s *core.Sample) {
	if sea := s.Sphere.Radius + m.OceanLevel; s.Height < sea {
		s.Height = sea
	}
}
