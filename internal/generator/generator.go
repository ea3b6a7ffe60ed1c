package generator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stellarator/internal/body"
	"stellarator/internal/core"
	_ "stellarator/internal/mods"
	"stellarator/internal/preset"
	"stellarator/internal/raster"
	"stellarator/internal/terrain"
	rng "stellarator/pkg/core"
)

var tracer = otel.Tracer("stellarator/generator")

// Options control where and how bodies are rendered.
type Options struct {
	// OutputDir is the root systems are written below.
	OutputDir string
	// Folder names the system directory inside OutputDir.
	Folder         string
	NormalStrength float64
	Seam           raster.Seam
	Workers        int
	// Resolution overrides the radius-based raster width when non-zero.
	Resolution   int
	StrictBodies bool
}

// SystemDir is the directory System.cfg is written to.
func (o Options) SystemDir() string { return filepath.Join(o.OutputDir, o.Folder) }

// PluginDir is the directory the body maps are written to.
func (o Options) PluginDir() string { return filepath.Join(o.SystemDir(), "PluginData") }

// Generator renders bodies from a loaded data pack.
type Generator struct {
	Data    *Data
	Options Options
	Log     *slog.Logger
	// Rand is the run's random source. Every stage draws from it in order.
	Rand rng.Random
}

// New returns a generator seeded with seed.
func New(data *Data, opts Options, seed int64, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{Data: data, Options: opts, Log: log, Rand: rng.NewRNG(seed)}
}

// Result describes one generated body.
type Result struct {
	Name     string
	Body     body.Body
	Home     bool
	Template preset.Template
	// Preset, Stack, Report and Files stay zero for gas giants, which have no
	// surface.
	Preset preset.Preset
	Stack  *terrain.Stack
	Report *terrain.Report
	Width  int
	Height int
	Files  raster.Files
	// Color is the average diffuse color, or a random color for gas giants.
	Color core.Color
}

// Terrain reports whether the body has rendered maps.
func (r *Result) Terrain() bool { return r.Stack != nil }

// GenerateBody builds the terrain of b and exports its maps under name.
// Failing to find a preset or to write the maps is fatal for the body.
func (g *Generator) GenerateBody(ctx context.Context, b body.Body, name string, home bool) (*Result, error) {
	ctx, span := tracer.Start(ctx, "body", trace.WithAttributes(
		attribute.String("body", name),
		attribute.Float64("radius", b.Radius),
	))
	defer span.End()
	log := g.Log.With("body", name)

	res := &Result{Name: name, Body: b, Home: home}
	tmpl, err := g.template(b, home)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	res.Template = tmpl

	if b.GasGiant {
		r, gr, bl := rng.Color(g.Rand)
		res.Color = core.Color{R: float64(r) / 255, G: float64(gr) / 255, B: float64(bl) / 255, A: 1}
		log.Info("gas giant", "template", tmpl.Name)
		return res, nil
	}

	if err := g.terrain(ctx, log, NewSession(g.Rand, b, log), res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

// template chooses the baseline body. The home body keeps the home template
// when the pack has one.
func (g *Generator) template(b body.Body, home bool) (preset.Template, error) {
	if b.GasGiant {
		return g.Data.Templates.GasGiant()
	}
	if home {
		if t, ok := g.Data.Templates.Get(body.HomeName); ok {
			return t, nil
		}
	}
	return g.Data.Templates.Pick(b.HasAtmosphere(), g.Rand)
}

func (g *Generator) terrain(ctx context.Context, log *slog.Logger, s *Session, res *Result) error {
	sw := core.NewStopwatch()

	p, err := g.Data.Presets.Select(s.Body.Radius, s.Rand)
	if err != nil {
		return err
	}
	res.Preset = p
	s.usePreset(p)

	rctx, span := tracer.Start(ctx, "reconcile")
	rec := s.reconciler(log)
	if !res.Template.RemoveAllMods {
		s.Stack, _ = rec.Build(rctx, terrain.ParseDeclarations(res.Template.Mods))
	}
	res.Report = rec.Reconcile(rctx, s.Stack, terrain.ParseDeclarations(p.Mods))
	res.Stack = s.Stack
	span.SetAttributes(
		attribute.String("preset", p.Name),
		attribute.Int("created", res.Report.Count(terrain.Created)),
		attribute.Int("patched", res.Report.Count(terrain.Patched)),
		attribute.Int("literals", res.Report.Literals()),
	)
	span.End()
	log.Info("done reconcile",
		"preset", p.Name,
		"template", res.Template.Name,
		"mods", s.Stack.Len(),
		"patched", res.Report.Count(terrain.Patched),
		"created", res.Report.Count(terrain.Created),
		"skipped", res.Report.Count(terrain.SkippedUnknownType)+res.Report.Count(terrain.SkippedBadIndex),
		"literals", res.Report.Literals(),
		"elapsed", sw.Lap(),
	)

	sphere := core.Sphere{Radius: s.Body.Radius, RadiusDelta: radiusDelta(res.Template, s.Body.Radius)}
	if err := s.Stack.Setup(sphere); err != nil {
		log.Warn("mods disabled", "reason", err)
	}

	w, h := raster.Resolution(s.Body.Radius)
	if g.Options.Resolution > 0 {
		w, h = g.Options.Resolution, g.Options.Resolution/2
	}
	rctx, span = tracer.Start(ctx, "rasterize", trace.WithAttributes(
		attribute.Int("width", w),
		attribute.Int("height", h),
	))
	r, err := raster.Rasterize(rctx, s.Stack.Mods, sphere, w, h, raster.Options{Workers: g.Options.Workers})
	span.End()
	if err != nil {
		return err
	}
	res.Width, res.Height = w, h
	log.Info("done rasterize", "width", w, "height", h, "stack", s.Stack.Summary(), "elapsed", sw.Lap())

	_, span = tracer.Start(ctx, "export")
	res.Files, err = r.Export(g.Options.PluginDir(), res.Name, g.Options.NormalStrength, g.Options.Seam)
	span.End()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	res.Color = r.AverageColor()
	log.Info("done export", "texture", res.Files.Texture, "elapsed", sw.Lap(), "total", sw.Total())
	return nil
}

// radiusDelta scales the template's displacement range to the body.
func radiusDelta(t preset.Template, radius float64) float64 {
	if t.RadiusDelta <= 0 || t.Radius <= 0 {
		return 0
	}
	return t.RadiusDelta * radius / t.Radius
}
