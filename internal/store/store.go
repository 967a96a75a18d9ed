// Package store persists document snapshots.
package store

import (
	"context"
	"errors"

	"github.com/inamate/draftview/backend-go/internal/document"
)

var ErrNotFound = errors.New("document not found")

// Store keeps the latest snapshot of each document. Put bumps the
// document's version.
type Store interface {
	Get(ctx context.Context, id string) (*document.Document, error)
	Put(ctx context.Context, doc *document.Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Summary, error)
}

type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Entities int    `json:"entities"`
}
