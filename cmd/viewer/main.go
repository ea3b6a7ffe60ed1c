//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"stellarator/internal/app"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	view, err := app.NewView(cfg.System)
	if err != nil {
		log.Error("open system", "dir", cfg.System, "reason", err)
		os.Exit(1)
	}

	game := app.New(view, cfg, log)

	ebiten.SetWindowTitle("stellarator")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(cfg.Width+cfg.Panel, cfg.Width/2)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("viewer", "reason", err)
		os.Exit(1)
	}
}
