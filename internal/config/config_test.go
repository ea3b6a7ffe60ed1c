package config

import (
	"flag"
	"log/slog"
	"strings"
	"testing"

	"stellarator/internal/raster"
)

func TestDefaultsValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestEnvThenFlags(t *testing.T) {
	t.Setenv("STELLARATOR_SEED", "7")
	t.Setenv("STELLARATOR_SEAM", "toroidal")
	t.Setenv("STELLARATOR_WORKERS", "3")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Seed != 7 || cfg.Workers != 3 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Output != "systems" {
		t.Fatalf("unset variables must keep defaults, got %q", cfg.Output)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-seed", "9", "-log-level", "debug"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Seed != 9 || cfg.Workers != 3 {
		t.Fatalf("flags should override env: %+v", cfg)
	}
	if seam, _ := cfg.SeamMode(); seam != raster.SeamToroidal {
		t.Fatalf("seam %v", seam)
	}
	if l, _ := cfg.Level(); l != slog.LevelDebug {
		t.Fatalf("level %v", l)
	}
}

func TestApplyEnvError(t *testing.T) {
	t.Setenv("STELLARATOR_SEED", "not-a-number")
	cfg := DefaultConfig()
	err := cfg.ApplyEnv()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seam = "mirror"
	cfg.NormalStrength = 11
	cfg.Resolution = 1023
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, want := range []string{"seam", "strength", "resolution"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}
