// Package generator drives a generation run: it loads a data pack, builds the
// terrain of every body through a per-body Session and writes the system
// description next to the exported maps.
package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"stellarator/internal/body"
	"stellarator/internal/confignode"
	"stellarator/internal/datapack"
	"stellarator/internal/preset"
)

// Span is a [Min, Max) range read from JSON.
type Span struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RingDef describes one ring of a ring set. Radii are factors of the body
// radius.
type RingDef struct {
	InnerRadius  Span   `json:"innerRadius"`
	OuterRadius  Span   `json:"outerRadius"`
	Angle        Span   `json:"angle"`
	LockRotation string `json:"lockRotation"`
}

// Data is everything a run reads from a pack.
type Data struct {
	Bodies    []body.Body
	Presets   *preset.Library
	Templates *preset.Templates
	Names     *body.Names
	// Rings lists alternative ring sets; empty disables rings.
	Rings [][]RingDef
	// CurvesDir is empty when the pack carries no atmosphere curves.
	CurvesDir string
}

// LoadData reads a validated pack. runSeed fills in missing body seeds.
func LoadData(pack datapack.Pack, runSeed int64) (*Data, error) {
	var (
		d   Data
		err error
	)
	if d.Bodies, err = body.Load(pack.Path(datapack.BodiesFile), runSeed); err != nil {
		return nil, err
	}
	if d.Presets, err = preset.LoadLibraryFile(pack.Path(datapack.PresetsFile)); err != nil {
		return nil, err
	}
	if d.Templates, err = preset.LoadTemplatesFile(pack.Path(datapack.TemplatesFile)); err != nil {
		return nil, err
	}
	if d.Names, err = body.LoadNames(pack.Path(datapack.NamesFile)); err != nil {
		return nil, err
	}
	if pack.Has(datapack.RingsFile) {
		raw, err := os.ReadFile(pack.Path(datapack.RingsFile))
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &d.Rings); err != nil {
			return nil, fmt.Errorf("decode %s: %w", datapack.RingsFile, err)
		}
	}
	if info, err := os.Stat(pack.Path(datapack.CurvesDir)); err == nil && info.IsDir() {
		d.CurvesDir = pack.Path(datapack.CurvesDir)
	}
	return &d, nil
}

// curves loads the pressure and temperature curves for a template. Missing
// files yield nil nodes.
func (d *Data) curves(template string) (pressure, temperature *confignode.Node) {
	if d.CurvesDir == "" {
		return nil, nil
	}
	load := func(suffix, name string) *confignode.Node {
		n, err := confignode.Load(filepath.Join(d.CurvesDir, template+suffix+".cfg"))
		if err != nil {
			return nil
		}
		n.Name = name
		return n
	}
	return load("Pressure", "pressureCurve"), load("Temperature", "temperatureCurve")
}
