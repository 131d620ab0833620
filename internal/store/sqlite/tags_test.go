package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/errors"
)

func TestAddTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-t1", "gdrive-t1", "Tagged")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	tag := &domain.DocumentTag{
		DocumentID: "doc-t1",
		Name:       "Fantasy",
		Category:   domain.CategoryGenre,
	}
	if err := s.AddTag(ctx, tag); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if tag.ID == "" {
		t.Error("expected AddTag to fill in the ID")
	}
	if tag.CreatedAt.IsZero() {
		t.Error("expected AddTag to fill in CreatedAt")
	}

	got, err := s.GetDocument(ctx, "doc-t1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if len(got.Tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(got.Tags))
	}
	if got.Tags[0].Name != "Fantasy" || got.Tags[0].Category != domain.CategoryGenre {
		t.Errorf("tag: got %+v", got.Tags[0])
	}
}

func TestAddTag_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-t2", "gdrive-t2", "Tagged")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	first := &domain.DocumentTag{DocumentID: "doc-t2", Name: "Fantasy", Category: domain.CategoryGenre}
	if err := s.AddTag(ctx, first); err != nil {
		t.Fatalf("AddTag first: %v", err)
	}

	dup := &domain.DocumentTag{DocumentID: "doc-t2", Name: "Fantasy", Category: domain.CategoryGenre}
	if err := s.AddTag(ctx, dup); !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAddTag_InvalidCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-t3", "gdrive-t3", "Tagged")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	tag := &domain.DocumentTag{DocumentID: "doc-t3", Name: "X", Category: "Bogus"}
	if err := s.AddTag(ctx, tag); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAddTagIfAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-t4", "gdrive-t4", "Tagged")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	added, err := s.AddTagIfAbsent(ctx, "doc-t4", "Skyrim", domain.CategorySeries)
	if err != nil {
		t.Fatalf("AddTagIfAbsent: %v", err)
	}
	if !added {
		t.Error("expected added=true on first call")
	}

	added, err = s.AddTagIfAbsent(ctx, "doc-t4", "Skyrim", domain.CategorySeries)
	if err != nil {
		t.Fatalf("AddTagIfAbsent second: %v", err)
	}
	if added {
		t.Error("expected added=false on second call")
	}
}

func TestRemoveTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-t5", "gdrive-t5", "Tagged")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if _, err := s.AddTagIfAbsent(ctx, "doc-t5", "Horror", domain.CategoryGenre); err != nil {
		t.Fatalf("AddTagIfAbsent: %v", err)
	}

	removed, err := s.RemoveTag(ctx, "doc-t5", "Horror")
	if err != nil {
		t.Fatalf("RemoveTag: %v", err)
	}
	if !removed {
		t.Error("expected removed=true")
	}

	removed, err = s.RemoveTag(ctx, "doc-t5", "Horror")
	if err != nil {
		t.Fatalf("RemoveTag second: %v", err)
	}
	if removed {
		t.Error("expected removed=false for absent tag")
	}
}

func TestListTagNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-t6", "gdrive-t6", "A")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := s.CreateDocument(ctx, makeTestDocument("doc-t7", "gdrive-t7", "B")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	for _, add := range []struct {
		doc, name string
		cat       domain.TagCategory
	}{
		{"doc-t6", "Fantasy", domain.CategoryGenre},
		{"doc-t7", "Fantasy", domain.CategoryGenre},
		{"doc-t7", "Horror", domain.CategoryGenre},
		{"doc-t6", "Skyrim", domain.CategorySeries},
	} {
		if _, err := s.AddTagIfAbsent(ctx, add.doc, add.name, add.cat); err != nil {
			t.Fatalf("AddTagIfAbsent(%s, %s): %v", add.doc, add.name, err)
		}
	}

	all, err := s.ListTagNames(ctx, nil)
	if err != nil {
		t.Fatalf("ListTagNames: %v", err)
	}
	// Distinct names sorted: Fantasy, Horror, Skyrim.
	if len(all) != 3 {
		t.Fatalf("expected 3 names, got %d: %v", len(all), all)
	}
	if all[0] != "Fantasy" || all[1] != "Horror" || all[2] != "Skyrim" {
		t.Errorf("names: got %v", all)
	}

	genre := domain.CategoryGenre
	genres, err := s.ListTagNames(ctx, &genre)
	if err != nil {
		t.Fatalf("ListTagNames(genre): %v", err)
	}
	if len(genres) != 2 {
		t.Fatalf("expected 2 genre names, got %d: %v", len(genres), genres)
	}
}

func TestDeleteTagsByCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-t8", "gdrive-t8", "A")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if _, err := s.AddTagIfAbsent(ctx, "doc-t8", "Fantasy", domain.CategoryGenre); err != nil {
		t.Fatalf("AddTagIfAbsent: %v", err)
	}
	if _, err := s.AddTagIfAbsent(ctx, "doc-t8", "Horror", domain.CategoryGenre); err != nil {
		t.Fatalf("AddTagIfAbsent: %v", err)
	}
	if _, err := s.AddTagIfAbsent(ctx, "doc-t8", "favorite", domain.CategoryUserFacing); err != nil {
		t.Fatalf("AddTagIfAbsent: %v", err)
	}

	n, err := s.DeleteTagsByCategory(ctx, domain.CategoryGenre)
	if err != nil {
		t.Fatalf("DeleteTagsByCategory: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	got, err := s.GetDocument(ctx, "doc-t8")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "favorite" {
		t.Errorf("expected only the user-facing tag to survive, got %+v", got.Tags)
	}
}

func TestAddTag_KeepsCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-t9", "gdrive-t9", "A")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tag := &domain.DocumentTag{DocumentID: "doc-t9", Name: "Old", Category: domain.CategoryContent, CreatedAt: at}
	if err := s.AddTag(ctx, tag); err != nil {
		t.Fatalf("AddTag: %v", err)
	}

	got, err := s.GetDocument(ctx, "doc-t9")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if !got.Tags[0].CreatedAt.Equal(at) {
		t.Errorf("CreatedAt: got %v, want %v", got.Tags[0].CreatedAt, at)
	}
}
