// Package catalog reads a generated system back from disk: the bodies listed
// in System.cfg and the maps exported for them.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stellarator/internal/body"
	"stellarator/internal/confignode"
	"stellarator/internal/core"
	"stellarator/internal/generator"
	"stellarator/internal/raster"
)

// ErrUnknownKind is returned for map kinds other than texture, height and normals.
var ErrUnknownKind = errors.New("unknown map kind")

// Kind selects one of the exported maps.
type Kind int

const (
	Texture Kind = iota
	Height
	Normals
)

// Kinds lists every map kind in display order.
var Kinds = []Kind{Texture, Height, Normals}

func (k Kind) String() string {
	switch k {
	case Height:
		return "height"
	case Normals:
		return "normals"
	default:
		return "texture"
	}
}

// ParseKind accepts the names returned by String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// Entry is one body of a generated system.
type Entry struct {
	Name     string       `json:"name"`
	Home     bool         `json:"home"`
	Template string       `json:"template"`
	Preset   string       `json:"preset,omitempty"`
	Mods     []string     `json:"mods,omitempty"`
	Color    core.Color   `json:"-"`
	ColorHex string       `json:"color"`
	Files    raster.Files `json:"-"`
	HasMaps  bool         `json:"hasMaps"`
}

// Path returns the file of the given map kind.
func (e Entry) Path(k Kind) string {
	switch k {
	case Height:
		return e.Files.Height
	case Normals:
		return e.Files.Normals
	default:
		return e.Files.Texture
	}
}

// Catalog lists the bodies of one system directory.
type Catalog struct {
	Dir     string
	Entries []Entry
}

// Load reads dir/System.cfg.
func Load(dir string) (*Catalog, error) {
	doc, err := confignode.Load(filepath.Join(dir, generator.SystemFile))
	if err != nil {
		return nil, err
	}
	root := doc.GetNode("@Kopernicus:FINAL")
	if root == nil {
		return nil, fmt.Errorf("%s: no system root", dir)
	}
	c := &Catalog{Dir: dir}
	plugin := filepath.Join(dir, "PluginData")
	for _, n := range root.GetNodes("Body") {
		c.Entries = append(c.Entries, entry(n, plugin))
	}
	return c, nil
}

func entry(n *confignode.Node, plugin string) Entry {
	var e Entry
	e.Name, _ = n.GetValue("name")
	if later, ok := n.GetValue("cbNameLater"); ok && e.Name == body.HomeName {
		e.Name, e.Home = later, true
	}
	if t := n.GetNode("Template"); t != nil {
		e.Template, _ = t.GetValue("name")
	}
	if o := n.GetNode("Orbit"); o != nil {
		if raw, ok := o.GetValue("color"); ok {
			if col, err := core.ParseColor(raw); err == nil {
				e.Color = col
			}
		}
	}
	n8 := e.Color.NRGBA()
	e.ColorHex = fmt.Sprintf("#%02x%02x%02x", n8.R, n8.G, n8.B)
	if pqs := n.GetNode("PQS"); pqs != nil {
		e.Preset, _ = pqs.GetValue("preset")
		if mods := pqs.GetNode("Mods"); mods != nil {
			for _, m := range mods.Nodes {
				label := m.Name
				if name, ok := m.GetValue("name"); ok {
					label += "[" + name + "]"
				}
				if enabled, _ := m.GetValue("enabled"); enabled == "False" {
					label += "(disabled)"
				}
				e.Mods = append(e.Mods, label)
			}
		}
		e.Files = raster.FileNames(plugin, e.Name)
		e.HasMaps = fileExists(e.Files.Texture)
	}
	return e
}

// Get returns the entry named name.
func (c *Catalog) Get(name string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// WithMaps returns the entries that have exported maps.
func (c *Catalog) WithMaps() []Entry {
	var out []Entry
	for _, e := range c.Entries {
		if e.HasMaps {
			out = append(out, e)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
