// Package mapserver serves the bodies and maps of a generated system over
// HTTP.
package mapserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"golang.org/x/image/draw"

	"stellarator/internal/catalog"
)

// MaxPreviewWidth bounds the width query parameter of map requests.
const MaxPreviewWidth = 4096

// Server answers catalog and map requests for one system directory. The
// catalog is reloaded on every request so a running generator's output shows
// up without a restart.
type Server struct {
	Dir string
	Log *slog.Logger
}

// New returns a server for the system in dir.
func New(dir string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{Dir: dir, Log: log}
}

// Router returns the HTTP routes:
//
//	GET /bodies                     list of bodies
//	GET /bodies/{name}              one body
//	GET /bodies/{name}/{kind}.png   texture, height or normals; ?w= resizes
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/bodies", s.listHandler).Methods(http.MethodGet)
	router.HandleFunc("/bodies/{name}", s.bodyHandler).Methods(http.MethodGet)
	router.HandleFunc("/bodies/{name}/{kind}.png", s.mapHandler).Methods(http.MethodGet)
	return router
}

func (s *Server) catalog(w http.ResponseWriter) (*catalog.Catalog, bool) {
	c, err := catalog.Load(s.Dir)
	if err != nil {
		s.Log.Error("load catalog", "dir", s.Dir, "reason", err)
		http.Error(w, "system not available", http.StatusServiceUnavailable)
		return nil, false
	}
	return c, true
}

func (s *Server) listHandler(w http.ResponseWriter, req *http.Request) {
	c, ok := s.catalog(w)
	if !ok {
		return
	}
	entries := c.Entries
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, entries)
}

func (s *Server) bodyHandler(w http.ResponseWriter, req *http.Request) {
	c, ok := s.catalog(w)
	if !ok {
		return
	}
	e, ok := c.Get(mux.Vars(req)["name"])
	if !ok {
		http.NotFound(w, req)
		return
	}
	writeJSON(w, e)
}

func (s *Server) mapHandler(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	kind, err := catalog.ParseKind(vars["kind"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	width := 0
	if raw := req.URL.Query().Get("w"); raw != "" {
		width, err = strconv.Atoi(raw)
		if err != nil || width <= 0 || width > MaxPreviewWidth {
			http.Error(w, "w must be in [1, "+strconv.Itoa(MaxPreviewWidth)+"]", http.StatusBadRequest)
			return
		}
	}

	c, ok := s.catalog(w)
	if !ok {
		return
	}
	e, ok := c.Get(vars["name"])
	if !ok || !e.HasMaps {
		http.NotFound(w, req)
		return
	}
	path := e.Path(kind)
	if width == 0 {
		w.Header().Set("Content-Type", "image/png")
		http.ServeFile(w, req, path)
		return
	}

	img, err := readPNG(path)
	if errors.Is(err, os.ErrNotExist) {
		http.NotFound(w, req)
		return
	}
	if err != nil {
		s.Log.Error("decode map", "path", path, "reason", err)
		http.Error(w, "map not readable", http.StatusInternalServerError)
		return
	}
	writeImage(w, Resize(img, width))
}

// Resize scales img to width keeping its aspect ratio.
func Resize(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == width || b.Dx() == 0 {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// writeImage writes the image to the response writer.
func writeImage(w http.ResponseWriter, img image.Image) {
	buffer := new(bytes.Buffer)
	if err := png.Encode(buffer, img); err != nil {
		http.Error(w, "unable to encode image", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buffer.Len()))
	w.Write(buffer.Bytes())
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "unable to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
