package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL" default:""`
	AssetDir       string `envconfig:"ASSET_DIR" default:"./data/assets"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	ArcSegments    int  `envconfig:"ARC_SEGMENTS" default:"16"`
	CircleSegments int  `envconfig:"CIRCLE_SEGMENTS" default:"64"`
	ByLayerColors  bool `envconfig:"BY_LAYER_COLORS" default:"false"`
	WidePolylines  bool `envconfig:"WIDE_POLYLINES" default:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ArcSegments < 1 || cfg.CircleSegments < 3 {
		return nil, fmt.Errorf("invalid segment counts: arc=%d circle=%d", cfg.ArcSegments, cfg.CircleSegments)
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginPatterns returns the origins as host patterns for websocket accept.
func (c *Config) OriginPatterns() []string {
	out := c.Origins()
	for i, o := range out {
		out[i] = strings.TrimPrefix(strings.TrimPrefix(o, "https://"), "http://")
	}
	return out
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
