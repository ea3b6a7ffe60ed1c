// Package body models the physical bodies produced by the orbital generator
// and the names given to them.
package body

import (
	"encoding/json"
	"fmt"
	"os"
)

// PressureThreshold is the surface pressure (atm) above which a body is
// considered to have an atmosphere.
const PressureThreshold = 0.00001

// Body is one planet record. Lengths are in meters, times in seconds.
type Body struct {
	Name               string  `json:"name,omitempty"`
	Radius             float64 `json:"radius"`
	SurfaceGravity     float64 `json:"surfaceGravity"`
	RotationPeriod     float64 `json:"rotationPeriod"`
	SurfacePressure    float64 `json:"surfacePressure"`
	SurfaceTemperature float64 `json:"surfaceTemperature"`
	MoleculeWeight     float64 `json:"moleculeWeight"`
	Albedo             float64 `json:"albedo"`
	GasGiant           bool    `json:"gasGiant"`
	HasOcean           bool    `json:"hasOcean"`
	TidallyLocked      bool    `json:"tidallyLocked"`
	AxialTilt          float64 `json:"axialTilt"`
	SemiMajorAxis      float64 `json:"semiMajorAxis"`
	Eccentricity       float64 `json:"eccentricity"`
	Seed               int64   `json:"seed,omitempty"`
}

// HasAtmosphere reports whether the surface pressure is above the threshold.
func (b Body) HasAtmosphere() bool { return b.SurfacePressure > PressureThreshold }

// Vars exposes the body to parameter expressions.
func (b Body) Vars() map[string]any {
	return map[string]any{
		"name":           b.Name,
		"radius":         b.Radius,
		"gravity":        b.SurfaceGravity,
		"rotationPeriod": b.RotationPeriod,
		"pressure":       b.SurfacePressure,
		"temperature":    b.SurfaceTemperature,
		"albedo":         b.Albedo,
		"gasGiant":       b.GasGiant,
		"hasOcean":       b.HasOcean,
		"hasAtmosphere":  b.HasAtmosphere(),
		"semiMajorAxis":  b.SemiMajorAxis,
		"eccentricity":   b.Eccentricity,
		"seed":           b.Seed,
	}
}

// Load reads a JSON array of bodies and fills missing seeds from runSeed and
// the body's position.
func Load(path string, runSeed int64) ([]Body, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bodies []Body
	if err := json.Unmarshal(data, &bodies); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i := range bodies {
		if bodies[i].Radius <= 0 {
			return nil, fmt.Errorf("%s: body %d has no radius", path, i)
		}
		if bodies[i].Seed == 0 {
			bodies[i].Seed = DeriveSeed(runSeed, i)
		}
	}
	return bodies, nil
}

// DeriveSeed returns a per-body seed.
func DeriveSeed(runSeed int64, index int) int64 {
	return runSeed*1000003 + int64(index) + 1
}
