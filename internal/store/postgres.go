package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/draftview/backend-go/internal/document"
)

const schema = `
CREATE TABLE IF NOT EXISTS document_snapshots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores one JSONB snapshot per document.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and creates the snapshot table if needed.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Get(ctx context.Context, id string) (*document.Document, error) {
	var raw []byte
	var version int
	err := p.pool.QueryRow(ctx,
		`SELECT document, version FROM document_snapshots WHERE id = $1`, id,
	).Scan(&raw, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	doc.Version = version
	return &doc, nil
}

func (p *Postgres) Put(ctx context.Context, doc *document.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("put document: missing id")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	var version int
	err = p.pool.QueryRow(ctx, `
		INSERT INTO document_snapshots (id, name, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    document = EXCLUDED.document,
		    version = document_snapshots.version + 1,
		    updated_at = now()
		RETURNING version`,
		doc.ID, doc.Name, raw,
	).Scan(&version)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	doc.Version = version
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM document_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) List(ctx context.Context) ([]Summary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, version, COALESCE(jsonb_array_length(document->'entities'), 0)
		FROM document_snapshots
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var s Summary
		err := row.Scan(&s.ID, &s.Name, &s.Version, &s.Entities)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}
	return out, nil
}
