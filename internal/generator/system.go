package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stellarator/internal/body"
	"stellarator/internal/confignode"
	"stellarator/internal/core"
	rng "stellarator/pkg/core"
)

// SystemFile is the name of the generated system description.
const SystemFile = "System.cfg"

// System is the outcome of a run.
type System struct {
	Root    *confignode.Node
	Results []*Result
	// Failed maps body names to the error that stopped them.
	Failed map[string]error
	Path   string
}

// Run generates every body of the pack in order and writes System.cfg. A
// failing body is logged and left out unless StrictBodies is set.
func (g *Generator) Run(ctx context.Context) (*System, error) {
	ctx, span := tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.Int("bodies", len(g.Data.Bodies)),
	))
	defer span.End()
	sw := core.NewStopwatch()

	root := confignode.New("@Kopernicus:FINAL")
	root.AddNode(confignode.New("!Body,*"))
	sys := &System{Root: root, Failed: map[string]error{}}

	home := g.pickHome()
	used := map[string]bool{}
	for i, b := range g.Data.Bodies {
		if err := ctx.Err(); err != nil {
			return sys, err
		}
		name := g.name(b, used)
		res, err := g.GenerateBody(ctx, b, name, i == home)
		if err != nil {
			if g.Options.StrictBodies {
				return sys, err
			}
			g.Log.Error("skip body", "body", name, "reason", err)
			sys.Failed[name] = err
			continue
		}
		sys.Results = append(sys.Results, res)
		root.AddNode(g.bodyNode(res))
	}

	if err := os.MkdirAll(g.Options.SystemDir(), 0o755); err != nil {
		return sys, err
	}
	doc := confignode.New("")
	doc.AddNode(root)
	sys.Path = filepath.Join(g.Options.SystemDir(), SystemFile)
	if err := doc.Save(sys.Path); err != nil {
		return sys, fmt.Errorf("write system: %w", err)
	}
	g.Log.Info("done system",
		"path", sys.Path,
		"bodies", len(sys.Results),
		"failed", len(sys.Failed),
		"elapsed", sw.Total(),
	)
	return sys, nil
}

// pickHome chooses the home body among rocky bodies with any surface
// pressure. It returns -1 when there is none.
func (g *Generator) pickHome() int {
	var candidates []int
	for i, b := range g.Data.Bodies {
		if !b.GasGiant && b.SurfacePressure > 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[g.Rand.IntN(len(candidates))]
}

// name returns the body's own name or a generated one not used before.
func (g *Generator) name(b body.Body, used map[string]bool) string {
	name := b.Name
	for attempt := 0; name == "" || used[name]; attempt++ {
		name = g.Data.Names.Generate(g.Rand)
		if attempt >= 32 && used[name] {
			name += strconv.Itoa(len(used))
		}
	}
	used[name] = true
	return name
}

func (g *Generator) bodyNode(res *Result) *confignode.Node {
	b := res.Body
	node := confignode.New("Body")
	if res.Home {
		node.AddValue("name", body.HomeName)
		node.AddValue("cbNameLater", res.Name)
	} else {
		node.AddValue("name", res.Name)
	}
	node.AddValue("randomMainMenuBody", "True")

	tmpl := node.AddNode(confignode.New("Template"))
	tmpl.AddValue("name", res.Template.Name)
	if !b.GasGiant {
		tmpl.AddValue("removeAllPQSMods", "True")
		if !b.HasAtmosphere() {
			tmpl.AddValue("removeAtmosphere", "True")
		}
		if !b.HasOcean {
			tmpl.AddValue("removeOcean", "True")
		}
	}

	props := node.AddNode(confignode.New("Properties"))
	props.AddValue("radius", num(b.Radius))
	props.AddValue("geeASL", num(b.SurfaceGravity))
	props.AddValue("rotationPeriod", num(b.RotationPeriod))
	props.AddValue("tidallyLocked", boolText(b.TidallyLocked))
	props.AddValue("initialRotation", strconv.Itoa(rng.Next(g.Rand, 0, 361)))
	props.AddValue("albedo", num(b.Albedo))
	props.AddValue("useTheInName", "False")

	orbit := node.AddNode(confignode.New("Orbit"))
	orbit.AddValue("referenceBody", "Sun")
	orbit.AddValue("inclination", num(b.AxialTilt))
	orbit.AddValue("eccentricity", num(b.Eccentricity))
	orbit.AddValue("semiMajorAxis", num(b.SemiMajorAxis))
	orbit.AddValue("longitudeOfAscendingNode", num(rng.Range(g.Rand, 0, 181)))
	orbit.AddValue("meanAnomalyAtEpochD", num(rng.Range(g.Rand, 0, 181)))
	orbit.AddValue("color", core.FormatColor(res.Color))

	mat := node.AddNode(confignode.New("ScaledVersion")).AddNode(confignode.New("Material"))
	if res.Terrain() {
		rel := filepath.ToSlash(filepath.Join(g.Options.Folder, "PluginData"))
		mat.AddValue("texture", rel+"/"+filepath.Base(res.Files.Texture))
		mat.AddValue("normals", rel+"/"+filepath.Base(res.Files.Normals))
	} else {
		mat.AddValue("color", core.FormatColor(res.Color))
	}

	if b.HasAtmosphere() {
		atmo := node.AddNode(confignode.New("Atmosphere"))
		atmo.AddValue("enabled", "True")
		atmo.AddValue("oxygen", boolText(rng.Chance(g.Rand, 10)))
		atmo.AddValue("atmosphereDepth", num(b.Radius*rng.Range(g.Rand, 0.1, 0.16)))
		atmo.AddValue("atmosphereMolarMass", num(b.MoleculeWeight/1000))
		atmo.AddValue("staticPressureASL", num(b.SurfacePressure*101.324996948242))
		atmo.AddValue("temperatureSeaLevel", num(b.SurfaceTemperature))
		pressure, temperature := g.Data.curves(res.Template.Name)
		if pressure != nil {
			atmo.AddNode(pressure)
		}
		if temperature != nil {
			atmo.AddNode(temperature)
		}
	}

	if b.GasGiant && len(g.Data.Rings) > 0 && rng.Chance(g.Rand, 5) {
		node.AddNode(g.ringsNode(res))
	}

	if res.Terrain() {
		node.AddNode(pqsNode(res))
	}
	return node
}

// ringsNode draws one ring set. Ring radii are written in kilometers.
func (g *Generator) ringsNode(res *Result) *confignode.Node {
	km := res.Body.Radius / 1000
	rings := confignode.New("Rings")
	set := g.Data.Rings[g.Rand.IntN(len(g.Data.Rings))]
	for _, def := range set {
		lock, _ := strconv.ParseBool(def.LockRotation)
		rings.AddNode(confignode.New("Ring")).
			AddValue("innerRadius", num(km*rng.Range(g.Rand, def.InnerRadius.Min, def.InnerRadius.Max))).
			AddValue("outerRadius", num(km*rng.Range(g.Rand, def.OuterRadius.Min, def.OuterRadius.Max))).
			AddValue("angle", num(rng.Range(g.Rand, def.Angle.Min, def.Angle.Max))).
			AddValue("color", core.FormatColor(res.Color)).
			AddValue("lockRotation", boolText(lock)).
			AddValue("unlit", "False")
	}
	return rings
}

// pqsNode lists the final stack so the description records what was
// rendered.
func pqsNode(res *Result) *confignode.Node {
	pqs := confignode.New("PQS")
	pqs.AddValue("preset", res.Preset.Name)
	mods := pqs.AddNode(confignode.New("Mods"))
	for i, m := range res.Stack.Mods {
		n := mods.AddNode(confignode.New(m.Type()))
		if m.Name() != "" {
			n.AddValue("name", m.Name())
		}
		n.AddValue("order", strconv.Itoa(m.Order()))
		n.AddValue("enabled", boolText(m.Enabled()))
		n.AddValue("position", strconv.Itoa(i))
	}
	return pqs
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func boolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
