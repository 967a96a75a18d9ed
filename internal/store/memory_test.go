package store

import (
	"context"
	"errors"
	"testing"

	"github.com/inamate/draftview/backend-go/internal/document"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, err := s.Get(ctx, "doc_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}

	doc := document.NewSampleDocument("doc_a")
	if err := s.Put(ctx, doc); err != nil {
		t.Fatalf("put: %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("version = %d, want 1", doc.Version)
	}

	got, err := s.Get(ctx, "doc_a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Entities) != len(doc.Entities) {
		t.Errorf("entities = %d, want %d", len(got.Entities), len(doc.Entities))
	}

	got.Name = "mutated"
	again, _ := s.Get(ctx, "doc_a")
	if again.Name == "mutated" {
		t.Error("store shares state with callers")
	}

	if err := s.Put(ctx, got); err != nil {
		t.Fatalf("second put: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("version = %d, want 2", got.Version)
	}
}

func TestMemoryListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	for _, id := range []string{"doc_b", "doc_a"} {
		if err := s.Put(ctx, document.NewEmptyDocument(id, id)); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "doc_a" {
		t.Errorf("list = %+v", list)
	}

	if err := s.Delete(ctx, "doc_a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "doc_a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}

	if err := s.Put(ctx, &document.Document{}); err == nil {
		t.Error("put without id succeeded")
	}
}
