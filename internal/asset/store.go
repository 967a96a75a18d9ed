// Package asset stores raster sources and resolves the ones drawings refer
// to.
package asset

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrNotFound = errors.New("asset not found")

// URLPrefix is where stored files are served.
const URLPrefix = "/assets/"

// Store is a directory of raster files.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates dir if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// Resolve maps a source reference to its served URL. References are file
// names, optionally with directories or the URL prefix; only the base name
// is looked up.
func (s *Store) Resolve(source string) (string, bool) {
	name, ok := s.name(source)
	if !ok {
		return "", false
	}
	if _, err := os.Stat(filepath.Join(s.dir, name)); err != nil {
		s.logger.Debug("unresolved raster source", "source", source)
		return "", false
	}
	return URLPrefix + name, true
}

// Load reads the dimensions of a resolved source without decoding pixels.
func (s *Store) Load(ctx context.Context, source string) (width, height int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	name, ok := s.name(source)
	if !ok {
		return 0, 0, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s header: %w", name, err)
	}
	s.logger.Debug("raster source loaded", "source", name, "format", format, "width", cfg.Width, "height", cfg.Height)
	return cfg.Width, cfg.Height, nil
}

// Remove deletes a stored file.
func (s *Store) Remove(source string) error {
	name, ok := s.name(source)
	if !ok {
		return ErrNotFound
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}

func (s *Store) name(source string) (string, bool) {
	source = strings.TrimPrefix(strings.ReplaceAll(source, "\\", "/"), URLPrefix)
	name := path.Base(source)
	if name == "." || name == "/" || name == ".." || name == "" {
		return "", false
	}
	return name, true
}
