// Package ui draws the viewer's info panel and coordinate overlay.
package ui

import (
	"fmt"

	"stellarator/internal/catalog"
)

// InfoLines describes a body for the info panel.
func InfoLines(e catalog.Entry, kind catalog.Kind, index, total int) []string {
	name := e.Name
	if e.Home {
		name += " (home)"
	}
	lines := []string{
		fmt.Sprintf("%s  %d/%d", name, index+1, total),
		"map: " + kind.String(),
		"template: " + e.Template,
		"preset: " + e.Preset,
		"color: " + e.ColorHex,
		"",
		fmt.Sprintf("mods (%d):", len(e.Mods)),
	}
	for _, m := range e.Mods {
		lines = append(lines, "  "+m)
	}
	return lines
}

// Help lists the viewer key bindings.
var Help = []string{
	"<- ->  body",
	"1 2 3  texture/height/normals",
	"G      grid",
	"R      reload",
	"Q      quit",
}
