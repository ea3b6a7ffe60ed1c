package core

import (
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Color is a linear RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float64
}

// White is the default vertex color before any color mod runs.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Lerp blends c toward o by t.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// Clamp limits every channel to [0, 1].
func (c Color) Clamp() Color {
	return Color{R: Clamp01(c.R), G: Clamp01(c.G), B: Clamp01(c.B), A: Clamp01(c.A)}
}

// NRGBA converts the color to an 8-bit image color.
func (c Color) NRGBA() color.NRGBA {
	c = c.Clamp()
	return color.NRGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Sphere describes the body surface a stack is built against.
type Sphere struct {
	Radius      float64 // Base radius in meters.
	RadiusDelta float64 // Expected maximum displacement; 0 if unknown.
}

// Sample carries the state of one surface point through the mod stack.
type Sample struct {
	Dir    mgl64.Vec3 // Unit direction from the body center.
	U, V   float64    // Grid position as fractions of width and height.
	Height float64    // Absolute height, starts at the sphere radius.
	Color  Color
	Sphere Sphere
}

// NewSample returns a sample at the base radius with the default color.
func NewSample(sphere Sphere, dir mgl64.Vec3, u, v float64) Sample {
	return Sample{Dir: dir, U: u, V: v, Height: sphere.Radius, Color: White, Sphere: sphere}
}

// Displacement is the raw height above the base radius.
func (s *Sample) Displacement() float64 { return s.Height - s.Sphere.Radius }

// Altitude is the displacement as a fraction of the sphere's radius delta.
// It is 0 when the delta is unknown.
func (s *Sample) Altitude() float64 {
	if s.Sphere.RadiusDelta <= 0 {
		return 0
	}
	return s.Displacement() / s.Sphere.RadiusDelta
}

// Mod is a deformation unit in a terrain stack. Implementations must not mutate
// their own state from OnBuildHeight or OnBuildVertex.
type Mod interface {
	Type() string
	Name() string
	SetName(name string)
	Enabled() bool
	SetEnabled(enabled bool)
	Order() int
	SetOrder(order int)

	// Setup prepares derived state (noise generators, lookup tables) once all
	// parameters are applied.
	Setup(sphere Sphere) error
	// OnBuildHeight perturbs the sample height.
	OnBuildHeight(s *Sample)
	// OnBuildVertex perturbs color with the final height available.
	OnBuildVertex(s *Sample)
}

// ModBase implements the identity part of Mod for embedding.
type ModBase struct {
	ModName    string
	ModOrder   int
	ModEnabled bool
}

// NewModBase returns an enabled, unnamed base.
func NewModBase() ModBase { return ModBase{ModEnabled: true} }

func (b *ModBase) Name() string          { return b.ModName }
func (b *ModBase) SetName(name string)   { b.ModName = name }
func (b *ModBase) Enabled() bool         { return b.ModEnabled }
func (b *ModBase) SetEnabled(e bool)     { b.ModEnabled = e }
func (b *ModBase) Order() int            { return b.ModOrder }
func (b *ModBase) SetOrder(order int)    { b.ModOrder = order }
func (b *ModBase) Setup(Sphere) error    { return nil }
func (b *ModBase) OnBuildHeight(*Sample) {}
func (b *ModBase) OnBuildVertex(*Sample) {}

// Factory constructs a fresh mod with default parameters.
type Factory func() Mod

// ModType pairs a factory with the parameter table used to configure it.
type ModType struct {
	Name   string
	New    Factory
	Params map[string]Setter
}

var modTypes = map[string]ModType{}

// Register adds a mod type under its name. It is meant to be called from init.
func Register(t ModType) {
	if t.Name == "" || t.New == nil {
		return
	}
	if t.Params == nil {
		t.Params = map[string]Setter{}
	}
	modTypes[t.Name] = t
}

// Lookup resolves a declared type name.
func Lookup(name string) (ModType, bool) {
	t, ok := modTypes[name]
	return t, ok
}

// ModTypes lists the registered type names in sorted order.
func ModTypes() []string {
	names := make([]string, 0, len(modTypes))
	for name := range modTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
