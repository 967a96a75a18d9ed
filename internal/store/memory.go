package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/inamate/draftview/backend-go/internal/document"
)

// Memory is an in-process Store. Documents are stored as JSON so callers
// never share state with the store.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	raw, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (m *Memory) Put(ctx context.Context, doc *document.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("put document: missing id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	version := 1
	if prev, ok := m.docs[doc.ID]; ok {
		var old struct {
			Version int `json:"version"`
		}
		if err := json.Unmarshal(prev, &old); err == nil {
			version = old.Version + 1
		}
	}
	doc.Version = version

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	m.docs[doc.ID] = raw
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *Memory) List(ctx context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(m.docs))
	for _, raw := range m.docs {
		var doc document.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, Summary{ID: doc.ID, Name: doc.Name, Version: doc.Version, Entities: len(doc.Entities)})
	}
	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}
