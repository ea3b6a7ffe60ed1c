package app

import (
	"errors"
	"image"
	"image/draw"
	"image/png"
	"os"

	"stellarator/internal/catalog"
)

// ErrEmpty is returned when a system has no bodies with maps.
var ErrEmpty = errors.New("no bodies with maps")

// View tracks which body and map kind the viewer shows.
type View struct {
	dir     string
	entries []catalog.Entry
	index   int
	kind    catalog.Kind
}

// NewView loads the system in dir.
func NewView(dir string) (*View, error) {
	v := &View{dir: dir}
	if err := v.Reload(); err != nil {
		return nil, err
	}
	return v, nil
}

// Reload rereads the catalog, keeping the current body when it still exists.
func (v *View) Reload() error {
	c, err := catalog.Load(v.dir)
	if err != nil {
		return err
	}
	entries := c.WithMaps()
	if len(entries) == 0 {
		return ErrEmpty
	}
	current := ""
	if len(v.entries) > 0 {
		current = v.Current().Name
	}
	v.entries, v.index = entries, 0
	for i, e := range entries {
		if e.Name == current {
			v.index = i
		}
	}
	return nil
}

// Current returns the selected body.
func (v *View) Current() catalog.Entry { return v.entries[v.index] }

// Kind returns the selected map kind.
func (v *View) Kind() catalog.Kind { return v.kind }

// Len returns the number of browsable bodies.
func (v *View) Len() int { return len(v.entries) }

// Index returns the position of the selected body.
func (v *View) Index() int { return v.index }

// Step moves the selection by delta bodies, wrapping at both ends.
func (v *View) Step(delta int) {
	n := len(v.entries)
	v.index = ((v.index+delta)%n + n) % n
}

// SetKind selects a map kind.
func (v *View) SetKind(k catalog.Kind) { v.kind = k }

// Image decodes the selected map.
func (v *View) Image() (*image.NRGBA, error) {
	f, err := os.Open(v.Current().Path(v.kind))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba, nil
	}
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}
