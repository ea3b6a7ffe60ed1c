package core

import (
	"errors"
	"testing"
	"time"

	"stellarator/internal/confignode"
)

type probe struct {
	ModBase
	Scale float64
	Count int
	Flip  bool
	Tint  Color
	Node  string
}

func (p *probe) Type() string { return "Probe" }

var probeType = ModType{
	Name: "Probe",
	New:  func() Mod { return &probe{ModBase: NewModBase()} },
	Params: map[string]Setter{
		"scale": FloatParam(func(p *probe) *float64 { return &p.Scale }),
		"count": IntParam(func(p *probe) *int { return &p.Count }),
		"flip":  BoolParam(func(p *probe) *bool { return &p.Flip }),
		"tint":  ColorParam(func(p *probe) *Color { return &p.Tint }),
		"Inner": NodeParam(func(p *probe, n *confignode.Node) error {
			p.Node, _ = n.GetValue("k")
			return nil
		}),
	},
}

func TestApplySetters(t *testing.T) {
	m := probeType.New().(*probe)
	steps := []struct {
		key string
		v   Value
	}{
		{"scale", Text("2.5")},
		{"count", Number(7.9)},
		{"flip", Text("True")},
		{"tint", Text("#ff000080")},
		{"Inner", NodeValue(confignode.New("Inner").AddValue("k", "v"))},
		{"name", Text("Alpha")},
		{"order", Text("3")},
		{"enabled", Bool(false)},
	}
	for _, s := range steps {
		if err := probeType.Apply(m, s.key, s.v); err != nil {
			t.Fatalf("apply %s: %v", s.key, err)
		}
	}
	if m.Scale != 2.5 || m.Count != 7 || !m.Flip || m.Node != "v" {
		t.Fatalf("unexpected probe %+v", m)
	}
	if m.Tint.R != 1 || m.Tint.G != 0 || m.Tint.A < 0.5 || m.Tint.A > 0.51 {
		t.Fatalf("unexpected tint %+v", m.Tint)
	}
	if m.Name() != "Alpha" || m.Order() != 3 || m.Enabled() {
		t.Fatalf("common params not applied: %+v", m.ModBase)
	}
}

func TestApplyErrors(t *testing.T) {
	m := probeType.New()
	if err := probeType.Apply(m, "missing", Text("1")); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("expected ErrUnknownParam, got %v", err)
	}
	if err := probeType.Apply(m, "scale", Text("tall")); err == nil {
		t.Fatalf("expected a parse error")
	}
	if err := probeType.Apply(m, "Inner", Text("flat")); err == nil {
		t.Fatalf("text must not satisfy a node parameter")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"RGBA(255,0,0,255)", Color{R: 1, A: 1}},
		{"RGBA(0, 255, 0, 0)", Color{G: 1}},
		{"#0000ff", Color{B: 1, A: 1}},
		{"0.5,0.5,0.5", Color{R: 0.5, G: 0.5, B: 0.5, A: 1}},
		{"1 1 1 0", Color{R: 1, G: 1, B: 1}},
	}
	for _, c := range cases {
		got, err := ParseColor(c.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
	for _, bad := range []string{"RGBA(1,2,3)", "#abc", "red", "1,2"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) should fail", bad)
		}
	}
	if s := FormatColor(Color{R: 1, G: 0.5, B: 0, A: 1}); s != "RGBA(255,128,0,255)" {
		t.Fatalf("FormatColor = %s", s)
	}
}

func TestSampleAltitude(t *testing.T) {
	s := NewSample(Sphere{Radius: 100, RadiusDelta: 10}, [3]float64{0, 0, 1}, 0, 0)
	s.Height = 105
	if s.Displacement() != 5 || s.Altitude() != 0.5 {
		t.Fatalf("displacement %g altitude %g", s.Displacement(), s.Altitude())
	}
	s.Sphere.RadiusDelta = 0
	if s.Altitude() != 0 {
		t.Fatalf("unknown delta must give altitude 0")
	}
}

func TestFloatGridWrap(t *testing.T) {
	g := NewFloatGrid(3, 2)
	g.Set(0, 0, 1)
	g.Set(2, 1, 5)
	if g.At(3, 0) != 1 || g.At(-1, -1) != 5 || g.At(-1, 1) != 5 {
		t.Fatalf("repeat addressing broken: %v", g.Cells())
	}
	if x, y := g.Wrap(-4, 5); x != 2 || y != 1 {
		t.Fatalf("Wrap(-4,5) = %d,%d", x, y)
	}
}

func TestStopwatch(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }
	sw := newStopwatch(clock)
	now = now.Add(2 * time.Second)
	if d := sw.Lap(); d != 2*time.Second {
		t.Fatalf("first lap %v", d)
	}
	now = now.Add(time.Second)
	if d := sw.Lap(); d != time.Second {
		t.Fatalf("second lap %v", d)
	}
	if sw.Total() != 3*time.Second {
		t.Fatalf("total %v", sw.Total())
	}
}

func TestRegistry(t *testing.T) {
	Register(probeType)
	Register(ModType{Name: "Broken"})
	if _, ok := Lookup("Probe"); !ok {
		t.Fatalf("registered type not found")
	}
	if _, ok := Lookup("Broken"); ok {
		t.Fatalf("type without factory must be ignored")
	}
	names := ModTypes()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("ModTypes not sorted: %v", names)
		}
	}
}
