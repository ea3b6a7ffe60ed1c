package raster

import (
	"context"
	"image/png"
	"math"
	"os"
	"slices"
	"testing"

	"stellarator/internal/core"
	_ "stellarator/internal/mods"
)

func TestResolution(t *testing.T) {
	cases := []struct {
		radius float64
		w, h   int
	}{
		{600000, 4096, 2048},
		{50000, 1024, 512},
		{300000, 2048, 1024},
		{100000, 1024, 512},
		{100001, 2048, 1024},
		{599999, 2048, 1024},
	}
	for _, c := range cases {
		w, h := Resolution(c.radius)
		if w != c.w || h != c.h {
			t.Fatalf("radius %v: got %dx%d want %dx%d", c.radius, w, h, c.w, c.h)
		}
	}
}

func TestDirectionIsUnitAndPoles(t *testing.T) {
	w, h := 64, 32
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			if l := Direction(i, j, w, h).Len(); math.Abs(l-1) > 1e-9 {
				t.Fatalf("cell (%d,%d) length %v", i, j, l)
			}
		}
	}
	// Row 0 is a pole: every column maps to the same point.
	a, b := Direction(0, 0, w, h), Direction(17, 0, w, h)
	for k := range a {
		if math.Abs(a[k]-b[k]) > 1e-9 {
			t.Fatalf("row 0 should be a pole: %v %v", a, b)
		}
	}
	if math.Abs(math.Abs(a[1])-1) > 1e-9 {
		t.Fatalf("row 0 should be a pole: %v", a)
	}
	// The middle row lies on the equator.
	if d := Direction(5, h/2, w, h); math.Abs(d[1]) > 1e-9 {
		t.Fatalf("middle row off the equator: %v", d)
	}
}

func stack(t *testing.T) []core.Mod {
	t.Helper()
	var mods []core.Mod
	add := func(name string, params map[string]core.Value) {
		mt, _ := core.Lookup(name)
		m := mt.New()
		for k, v := range params {
			if err := mt.Apply(m, k, v); err != nil {
				t.Fatalf("%s.%s: %v", name, k, err)
			}
		}
		if err := m.Setup(core.Sphere{}); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		mods = append(mods, m)
	}
	add("VertexSimplexHeightAbsolute", map[string]core.Value{"deformity": core.Number(900), "seed": core.Number(4)})
	add("VertexHeightNoise", map[string]core.Value{"deformity": core.Number(100), "seed": core.Number(4)})
	add("VertexSimplexNoiseColor", map[string]core.Value{"seed": core.Number(4), "blend": core.Number(0.5)})
	add("AltitudeGradient", map[string]core.Value{"blend": core.Number(0.5)})
	return mods
}

func TestRasterizeParallelMatchesSerial(t *testing.T) {
	mods := stack(t)
	sphere := core.Sphere{Radius: 100000, RadiusDelta: 1000}
	serial, err := Rasterize(context.Background(), mods, sphere, 64, 32, Options{Workers: 1})
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := Rasterize(context.Background(), mods, sphere, 64, 32, Options{Workers: 8})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if !slices.Equal(serial.Diffuse, parallel.Diffuse) || !slices.Equal(serial.Displacement, parallel.Displacement) {
		t.Fatalf("worker count changed the output")
	}
	if !slices.Equal(serial.Heights, parallel.Heights) {
		t.Fatalf("normalized heights differ")
	}
}

func TestSampleIsRepeatable(t *testing.T) {
	mods := stack(t)
	sphere := core.Sphere{Radius: 100000, RadiusDelta: 1000}
	for _, cell := range [][2]int{{0, 0}, {10, 7}, {63, 31}} {
		a := Sample(mods, sphere, cell[0], cell[1], 64, 32)
		b := Sample(mods, sphere, cell[0], cell[1], 64, 32)
		if a.Height != b.Height || a.Color != b.Color {
			t.Fatalf("cell %v differs between samples", cell)
		}
	}
}

func TestNormalizationAndAlpha(t *testing.T) {
	mods := stack(t)
	r, err := Rasterize(context.Background(), mods, core.Sphere{Radius: 1000, RadiusDelta: 300}, 32, 16, Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	sawClamp := false
	for i, h := range r.Heights {
		if h < 0 || h > 1 {
			t.Fatalf("height %v outside [0,1]", h)
		}
		if r.Displacement[i] > 300 {
			sawClamp = true
			if h != 1 {
				t.Fatalf("displacement above delta should clamp to 1")
			}
		}
		if r.Diffuse[i].A != 1 {
			t.Fatalf("alpha not forced to 1")
		}
	}
	if !sawClamp {
		t.Fatalf("expected some displacement above the delta")
	}
}

func TestNormalizationWithoutDelta(t *testing.T) {
	r := &Raster{Width: 2, Height: 1, Displacement: []float64{50, 200}, Heights: make([]float64, 2)}
	r.normalize(0)
	if r.Heights[0] != 0.25 || r.Heights[1] != 1 {
		t.Fatalf("observed maximum not used: %v", r.Heights)
	}
	flat := &Raster{Width: 2, Height: 1, Displacement: []float64{0, -3}, Heights: []float64{9, 9}}
	flat.normalize(0)
	if flat.Heights[0] != 0 || flat.Heights[1] != 0 {
		t.Fatalf("flat raster should normalize to zero: %v", flat.Heights)
	}
}

func TestDisabledModsSkipped(t *testing.T) {
	mt, _ := core.Lookup("VertexHeightOffset")
	m := mt.New()
	mt.Apply(m, "offset", core.Number(10))
	m.SetEnabled(false)
	r, err := Rasterize(context.Background(), []core.Mod{m}, core.Sphere{Radius: 10, RadiusDelta: 10}, 4, 2, Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	for _, d := range r.Displacement {
		if d != 0 {
			t.Fatalf("disabled mod changed height")
		}
	}
}

func TestRasterizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Rasterize(ctx, stack(t), core.Sphere{Radius: 1}, 16, 8, Options{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestAverageColor(t *testing.T) {
	r := &Raster{Diffuse: []core.Color{{R: 1, G: 0, B: 0, A: 1}, {R: 0, G: 0, B: 1, A: 1}}}
	if c := r.AverageColor(); c != (core.Color{R: 0.5, G: 0, B: 0.5, A: 1}) {
		t.Fatalf("average %+v", c)
	}
}

func TestUniformHeightGivesFlatNormals(t *testing.T) {
	g := core.NewFloatGrid(8, 4)
	for i := range g.Cells() {
		g.Cells()[i] = 0.7
	}
	for _, strength := range []float64{0, 1, 3.5, 10, 50} {
		for _, seam := range []Seam{SeamLegacy, SeamToroidal} {
			for _, c := range DeriveNormals(g, strength, seam) {
				if c != (core.Color{R: 0.5, G: 0.5, B: 0.5, A: 0.5}) {
					t.Fatalf("strength %v seam %v: got %+v", strength, seam, c)
				}
			}
		}
	}
}

func TestSeamModesDiffer(t *testing.T) {
	// A ramp across x: column values 0, 0.25, 0.5, 0.75.
	g := core.NewFloatGrid(4, 1)
	copy(g.Cells(), []float64{0, 0.25, 0.5, 0.75})
	legacy := DeriveNormals(g, 1, SeamLegacy)
	toroidal := DeriveNormals(g, 1, SeamToroidal)
	// Legacy: left of column 0 reads index 4, which repeats to column 0.
	if want := ((0 - 0.25) + 1) * 0.5; legacy[0].A != want {
		t.Fatalf("legacy seam: got %v want %v", legacy[0].A, want)
	}
	// Toroidal: left of column 0 is column 3.
	if want := ((0.75 - 0.25) + 1) * 0.5; toroidal[0].A != want {
		t.Fatalf("toroidal seam: got %v want %v", toroidal[0].A, want)
	}
	// Interior pixels agree; the right edge wraps to column 0 in both modes.
	if legacy[1] != toroidal[1] || legacy[3] != toroidal[3] {
		t.Fatalf("interior pixels should not depend on seam mode")
	}
}

func TestStrengthClamp(t *testing.T) {
	g := core.NewFloatGrid(3, 1)
	copy(g.Cells(), []float64{0, 0, 1})
	a := DeriveNormals(g, 10, SeamToroidal)
	b := DeriveNormals(g, 1000, SeamToroidal)
	if !slices.Equal(a, b) {
		t.Fatalf("strength above 10 must clamp")
	}
	if _, err := ParseSeam("mirror"); err == nil {
		t.Fatalf("expected error for unknown seam")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	r, err := Rasterize(context.Background(), stack(t), core.Sphere{Radius: 1000, RadiusDelta: 1000}, 16, 8, Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	files, err := r.Export(dir, "Kerbol", 2, SeamLegacy)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, path := range []string{files.Texture, files.Height, files.Normals} {
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("open %s: %v", path, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
			t.Fatalf("%s has size %v", path, b)
		}
	}
}
