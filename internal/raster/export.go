package raster

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"stellarator/internal/render"
)

// Files names the images written for one body.
type Files struct {
	Texture string
	Height  string
	Normals string
}

// FileNames returns the export paths for name inside dir.
func FileNames(dir, name string) Files {
	return Files{
		Texture: filepath.Join(dir, name+"_Texture.png"),
		Height:  filepath.Join(dir, name+"_Height.png"),
		Normals: filepath.Join(dir, name+"_Normals.png"),
	}
}

// Export writes the diffuse, height and normal images of r into dir.
func (r *Raster) Export(dir, name string, strength float64, seam Seam) (Files, error) {
	files := FileNames(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return files, err
	}
	imgs := []struct {
		path string
		img  image.Image
	}{
		{files.Texture, render.ColorImage(r.Width, r.Height, r.Diffuse)},
		{files.Height, render.GrayImage(r.Width, r.Height, r.Heights)},
		{files.Normals, render.ColorImage(r.Width, r.Height, r.Normals(strength, seam))},
	}
	for _, it := range imgs {
		if err := writePNG(it.path, it.img); err != nil {
			return files, err
		}
	}
	return files, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
