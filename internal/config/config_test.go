package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.ArcSegments != 16 || cfg.CircleSegments != 64 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.ByLayerColors || !cfg.WidePolylines {
		t.Errorf("flags = by-layer %v wide %v", cfg.ByLayerColors, cfg.WidePolylines)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ARC_SEGMENTS", "32")
	t.Setenv("BY_LAYER_COLORS", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, https://b.test")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ArcSegments != 32 || !cfg.ByLayerColors {
		t.Errorf("overrides = %+v", cfg)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.Level())
	}
	if p := cfg.OriginPatterns(); len(p) != 2 || p[0] != "a.test" || p[1] != "b.test" {
		t.Errorf("origin patterns = %v", p)
	}
}

func TestLoadRejectsBadSegments(t *testing.T) {
	t.Setenv("ARC_SEGMENTS", "0")
	if _, err := Load(); err == nil {
		t.Error("zero arc segments accepted")
	}
}
