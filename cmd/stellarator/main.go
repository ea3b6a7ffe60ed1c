package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stellarator/internal/config"
	"stellarator/internal/datapack"
	"stellarator/internal/generator"
	"stellarator/internal/telemetry"
)

func main() {
	cfg := config.DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		slog.Error("configuration", "error", err)
		os.Exit(2)
	}
	cfg.Bind(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		slog.Error("configuration", "error", err)
		os.Exit(2)
	}

	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, "stellarator", cfg.OTelEndpoint)
	if err != nil {
		log.Error("telemetry", "error", err)
		os.Exit(1)
	}
	defer shutdown(context.Background())

	if err := run(ctx, cfg, log); err != nil {
		log.Error("generation failed", "error", err)
		shutdown(context.Background())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	pack, err := datapack.Fetch(ctx, cfg.Data, cfg.Cache)
	if err != nil {
		return err
	}
	log.Info("data pack", "dir", pack.Dir, "source", pack.Source)

	data, err := generator.LoadData(pack, cfg.Seed)
	if err != nil {
		return err
	}
	seam, _ := cfg.SeamMode()
	gen := generator.New(data, generator.Options{
		OutputDir:      cfg.Output,
		Folder:         cfg.Folder,
		NormalStrength: cfg.NormalStrength,
		Seam:           seam,
		Workers:        cfg.Workers,
		Resolution:     cfg.Resolution,
		StrictBodies:   cfg.StrictBodies,
	}, cfg.Seed, log)

	log.Info("generating", "seed", cfg.Seed, "bodies", len(data.Bodies), "folder", cfg.Folder)
	sys, err := gen.Run(ctx)
	if err != nil {
		return err
	}
	for name, err := range sys.Failed {
		log.Warn("body skipped", "body", name, "error", err)
	}
	return nil
}
