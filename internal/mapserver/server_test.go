package mapserver

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"stellarator/internal/catalog"
	"stellarator/internal/generator"
)

const systemDoc = `@Kopernicus:FINAL
{
	Body
	{
		name = Dorna
		Template
		{
			name = Duna
		}
		PQS
		{
			preset = Rocky
			Mods
			{
				VertexHeightOffset
				{
				}
			}
		}
	}
}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, generator.SystemFile), []byte(systemDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	plugin := filepath.Join(dir, "PluginData")
	if err := os.MkdirAll(plugin, 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	for _, name := range []string{"Dorna_Texture.png", "Dorna_Height.png", "Dorna_Normals.png"} {
		f, err := os.Create(filepath.Join(plugin, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
	return New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListBodies(t *testing.T) {
	rec := get(t, newTestServer(t), "/bodies")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var entries []catalog.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Dorna" || !entries[0].HasMaps {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestBodyNotFound(t *testing.T) {
	if rec := get(t, newTestServer(t), "/bodies/Nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestMapServesFile(t *testing.T) {
	rec := get(t, newTestServer(t), "/bodies/Dorna/normals.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Fatalf("unexpected width %d", img.Bounds().Dx())
	}
}

func TestMapResizes(t *testing.T) {
	rec := get(t, newTestServer(t), "/bodies/Dorna/texture.png?w=4")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestMapBadRequests(t *testing.T) {
	s := newTestServer(t)
	if rec := get(t, s, "/bodies/Dorna/albedo.png"); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind: status %d", rec.Code)
	}
	if rec := get(t, s, "/bodies/Dorna/height.png?w=0"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad width: status %d", rec.Code)
	}
}

func TestMissingSystem(t *testing.T) {
	s := New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if rec := get(t, s, "/bodies"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
}

func TestResizeKeepsAspect(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	src.Set(0, 0, color.White)
	if b := Resize(src, 8).Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if Resize(src, 16) != image.Image(src) {
		t.Fatalf("same width should return the source")
	}
}
