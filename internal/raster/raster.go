// Package raster samples a mod stack over an equirectangular grid and derives
// the diffuse, height and normal images of a body.
package raster

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"stellarator/internal/core"
)

const (
	largeRadius = 600000
	smallRadius = 100000
)

// Resolution returns the image size for a body radius: 4096 wide from 600 km
// up, 1024 up to 100 km and 2048 between. Height is always half the width.
func Resolution(radius float64) (w, h int) {
	switch {
	case radius >= largeRadius:
		w = 4096
	case radius <= smallRadius:
		w = 1024
	default:
		w = 2048
	}
	return w, w / 2
}

// Raster holds the sampled buffers of one body in row-major order.
type Raster struct {
	Width, Height int
	// Diffuse is the sampled color with alpha forced to 1.
	Diffuse []core.Color
	// Displacement is the raw height above the base radius.
	Displacement []float64
	// Heights is the displacement normalized into [0, 1].
	Heights []float64
}

// Options tune a rasterization run.
type Options struct {
	// Workers bounds the number of rows sampled concurrently. Zero means
	// GOMAXPROCS; one samples serially.
	Workers int
}

// Direction returns the unit direction for grid cell (i, j): the forward
// vector rotated by 90-180/h*j degrees about the right axis, then by
// 360/w*i degrees about the vertical axis.
func Direction(i, j, w, h int) mgl64.Vec3 {
	lon := mgl64.DegToRad(360 / float64(w) * float64(i))
	lat := mgl64.DegToRad(90 - 180/float64(h)*float64(j))
	q := mgl64.QuatRotate(lon, mgl64.Vec3{0, 1, 0}).Mul(mgl64.QuatRotate(lat, mgl64.Vec3{1, 0, 0}))
	return q.Rotate(mgl64.Vec3{0, 0, 1})
}

// Sample runs one cell through the stack: every mod's height pass, then every
// mod's vertex pass with the final height available.
func Sample(mods []core.Mod, sphere core.Sphere, i, j, w, h int) core.Sample {
	s := core.NewSample(sphere, Direction(i, j, w, h), float64(i)/float64(w), float64(j)/float64(h))
	for _, m := range mods {
		m.OnBuildHeight(&s)
	}
	for _, m := range mods {
		m.OnBuildVertex(&s)
	}
	return s
}

// Rasterize samples mods over a w x h grid. Disabled mods are skipped. The
// result does not depend on the worker count.
func Rasterize(ctx context.Context, mods []core.Mod, sphere core.Sphere, w, h int, opts Options) (*Raster, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", w, h)
	}
	active := make([]core.Mod, 0, len(mods))
	for _, m := range mods {
		if m.Enabled() {
			active = append(active, m)
		}
	}
	r := &Raster{
		Width:        w,
		Height:       h,
		Diffuse:      make([]core.Color, w*h),
		Displacement: make([]float64, w*h),
		Heights:      make([]float64, w*h),
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for j := 0; j < h; j++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := j * w
			for i := 0; i < w; i++ {
				s := Sample(active, sphere, i, j, w, h)
				c := s.Color
				c.A = 1
				r.Diffuse[row+i] = c
				r.Displacement[row+i] = s.Displacement()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.normalize(sphere.RadiusDelta)
	return r, nil
}

// normalize fills Heights. Without a radius delta the largest observed
// displacement stands in for it.
func (r *Raster) normalize(delta float64) {
	if delta <= 0 {
		for _, d := range r.Displacement {
			delta = math.Max(delta, d)
		}
	}
	if delta <= 0 {
		clear(r.Heights)
		return
	}
	for i, d := range r.Displacement {
		r.Heights[i] = core.Clamp01(d / delta)
	}
}

// AverageColor returns the mean of the diffuse buffer.
func (r *Raster) AverageColor() core.Color {
	var sum core.Color
	for _, c := range r.Diffuse {
		sum.R += c.R
		sum.G += c.G
		sum.B += c.B
		sum.A += c.A
	}
	n := float64(len(r.Diffuse))
	if n == 0 {
		return core.Color{}
	}
	return core.Color{R: sum.R / n, G: sum.G / n, B: sum.B / n, A: sum.A / n}
}
