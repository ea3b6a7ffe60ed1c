package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stellarator/internal/generator"
)

const systemDoc = `@Kopernicus:FINAL
{
	!Body,*
	{
	}
	Body
	{
		name = Kerbin
		cbNameLater = Dorna
		Template
		{
			name = Duna
		}
		Orbit
		{
			color = RGBA(255,0,0,255)
		}
		PQS
		{
			preset = Rocky
			Mods
			{
				VertexSimplexHeightAbsolute
				{
					name = Continents
					enabled = True
				}
				VertexColorSolid
				{
					enabled = False
				}
			}
		}
	}
	Body
	{
		name = Jolo
		Template
		{
			name = Jool
		}
	}
}
`

func writeSystem(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, generator.SystemFile), []byte(systemDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	plugin := filepath.Join(dir, "PluginData")
	if err := os.MkdirAll(plugin, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(plugin, "Dorna_Texture.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	c, err := Load(writeSystem(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(c.Entries))
	}
	home, ok := c.Get("Dorna")
	if !ok || !home.Home {
		t.Fatalf("home body should be listed under its generated name: %+v", c.Entries)
	}
	if home.Template != "Duna" || home.Preset != "Rocky" || home.ColorHex != "#ff0000" {
		t.Fatalf("unexpected entry %+v", home)
	}
	want := []string{"VertexSimplexHeightAbsolute[Continents]", "VertexColorSolid(disabled)"}
	if len(home.Mods) != len(want) || home.Mods[0] != want[0] || home.Mods[1] != want[1] {
		t.Fatalf("mods %v, want %v", home.Mods, want)
	}
	if !home.HasMaps || filepath.Base(home.Path(Normals)) != "Dorna_Normals.png" {
		t.Fatalf("unexpected files %+v", home.Files)
	}
	if maps := c.WithMaps(); len(maps) != 1 {
		t.Fatalf("gas giant has no maps, got %d entries with maps", len(maps))
	}
}

func TestLoadMissingSystem(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected an error for a directory without System.cfg")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("albedo"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
