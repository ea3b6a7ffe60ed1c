// Package datapack locates the data files a generation run reads: the body
// list, the preset library, the templates, name fragments and ring ranges.
// Sources may be local directories or anything go-getter understands
// (git::, https:// archives, s3::).
package datapack

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
)

// File names inside a data pack.
const (
	BodiesFile    = "bodies.json"
	PresetsFile   = "presets.cfg"
	TemplatesFile = "templates.cfg"
	NamesFile     = "names.json"
	RingsFile     = "rings.json"
	// CurvesDir holds optional <Template>Pressure.cfg and
	// <Template>Temperature.cfg atmosphere curves.
	CurvesDir = "curves"
)

// Required lists the files every pack must provide. RingsFile is optional.
var Required = []string{BodiesFile, PresetsFile, TemplatesFile, NamesFile}

// ErrMissingFile is returned when a pack lacks a required file.
var ErrMissingFile = errors.New("data pack file missing")

// Pack is a resolved data directory.
type Pack struct {
	Dir    string
	Source string
}

// Path joins name onto the pack directory.
func (p Pack) Path(name string) string { return filepath.Join(p.Dir, name) }

// Has reports whether the pack contains name.
func (p Pack) Has(name string) bool {
	info, err := os.Stat(p.Path(name))
	return err == nil && !info.IsDir()
}

// Validate checks that every required file is present.
func (p Pack) Validate() error {
	var errs []error
	for _, name := range Required {
		if !p.Has(name) {
			errs = append(errs, fmt.Errorf("%s: %w", p.Path(name), ErrMissingFile))
		}
	}
	return errors.Join(errs...)
}

// Fetch resolves src to a local pack. Existing local directories are used in
// place; other sources are downloaded below cache, one directory per source.
// A previously fetched source is reused.
func Fetch(ctx context.Context, src, cache string) (Pack, error) {
	if info, err := os.Stat(src); err == nil && info.IsDir() {
		pack := Pack{Dir: src, Source: src}
		return pack, pack.Validate()
	}

	dst := filepath.Join(cache, cacheKey(src))
	pack := Pack{Dir: dst, Source: src}
	if _, err := os.Stat(dst); err == nil {
		return pack, pack.Validate()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Pack{}, err
	}

	pwd, err := os.Getwd()
	if err != nil {
		return Pack{}, err
	}
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeDir,
	}
	if err := client.Get(); err != nil {
		os.RemoveAll(dst)
		return Pack{}, fmt.Errorf("fetch %s: %w", src, err)
	}
	return pack, pack.Validate()
}

func cacheKey(src string) string {
	sum := sha1.Sum([]byte(src))
	return hex.EncodeToString(sum[:8])
}
