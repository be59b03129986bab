package service

import (
	"context"
	"errors"
	"testing"

	"wtrfll/server/internal/lyrics/domain"
	"wtrfll/server/internal/lyrics/repository"
)

const testSong = "{title: Test Song}\n[G]First line of the [C]song\nSecond [D]line\n"

func newCatalog(t *testing.T) (*CatalogService, *repository.MemoryRepository) {
	t.Helper()
	store := repository.NewMemoryRepository()
	return NewCatalogService(store, 0.6, 3.0), store
}

func floatPtr(v float64) *float64 { return &v }

func TestCatalog_CreateGetUpdateDelete(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, EntryInput{Title: "  Amazing Grace ", Author: "Newton", ChordPro: testSong})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != "Amazing Grace" {
		t.Errorf("title = %q, want trimmed", created.Title)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Author != "Newton" {
		t.Errorf("author = %q", got.Author)
	}

	updated, err := svc.Update(ctx, created.ID, EntryInput{Title: "Amazing Grace", Author: "John Newton", ChordPro: testSong})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Author != "John Newton" {
		t.Errorf("updated author = %q", updated.Author)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrEntryNotFound", err)
	}
}

func TestCatalog_TitleRequired(t *testing.T) {
	svc, _ := newCatalog(t)
	if _, err := svc.Create(context.Background(), EntryInput{Title: "  "}); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("err = %v, want ErrTitleRequired", err)
	}
}

func TestCatalog_ClampsFontScaleOnWrite(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, EntryInput{
		Title:    "Loud",
		ChordPro: testSong,
		Style:    &domain.Style{FontScale: floatPtr(9.5)},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Style == nil || created.Style.FontScale == nil || *created.Style.FontScale != 3.0 {
		t.Errorf("stored fontScale = %+v, want clamped to 3.0", created.Style)
	}

	created, err = svc.Create(ctx, EntryInput{
		Title:    "Tiny",
		ChordPro: testSong,
		Style:    &domain.Style{FontScale: floatPtr(0.1)},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if *created.Style.FontScale != 0.6 {
		t.Errorf("stored fontScale = %v, want clamped to 0.6", *created.Style.FontScale)
	}
}

func TestCatalog_SearchByTitleAndAuthor(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	for _, e := range []EntryInput{
		{Title: "Amazing Grace", Author: "Newton", ChordPro: testSong},
		{Title: "How Great Thou Art", Author: "Boberg", ChordPro: testSong},
	} {
		if _, err := svc.Create(ctx, e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	hits, err := svc.List(ctx, "grace")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "Amazing Grace" {
		t.Errorf("search grace = %+v", hits)
	}

	hits, err = svc.List(ctx, "boberg")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hits) != 1 || hits[0].Author != "Boberg" {
		t.Errorf("search by author = %+v", hits)
	}

	hits, err = svc.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("blank search = %d entries, want 2", len(hits))
	}
}

func TestPresentation_InlineTextSkipsEntryLookup(t *testing.T) {
	store := repository.NewMemoryRepository()
	pres := NewPresentationService(store, 0.6, 3.0)

	// The id is not stored anywhere; with inline text present it must not
	// even be looked up.
	got, err := pres.BuildPresentation(context.Background(), PresentationRequest{
		LyricsID: "not-stored",
		Title:    "Live Song",
		ChordPro: "[C]Inline body",
	})
	if err != nil {
		t.Fatalf("BuildPresentation: %v", err)
	}
	if len(got.Lines) != 1 || got.Lines[0] != "Inline body" {
		t.Errorf("lines = %q, want the inline text", got.Lines)
	}
	if got.Title != "Live Song" {
		t.Errorf("title = %q, want the patch title", got.Title)
	}
	if got.FontScale != 1.0 {
		t.Errorf("fontScale = %v, want default 1.0", got.FontScale)
	}
}

func TestPresentation_StoredEntryFallbacks(t *testing.T) {
	store := repository.NewMemoryRepository()
	catalog := NewCatalogService(store, 0.6, 3.0)
	pres := NewPresentationService(store, 0.6, 3.0)
	ctx := context.Background()

	entry, err := catalog.Create(ctx, EntryInput{
		Title:    "Stored Song",
		Author:   "A",
		ChordPro: "[G]Stored body",
		Style:    &domain.Style{FontScale: floatPtr(1.4)},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := pres.BuildPresentation(ctx, PresentationRequest{LyricsID: entry.ID})
	if err != nil {
		t.Fatalf("BuildPresentation: %v", err)
	}
	if len(got.Lines) != 1 || got.Lines[0] != "Stored body" {
		t.Errorf("lines = %q, want the stored text", got.Lines)
	}
	if got.FontScale != 1.4 {
		t.Errorf("fontScale = %v, want the stored style 1.4", got.FontScale)
	}
}

func TestPresentation_PatchScaleBeatsStoredAndClamps(t *testing.T) {
	store := repository.NewMemoryRepository()
	pres := NewPresentationService(store, 0.6, 3.0)

	got, err := pres.BuildPresentation(context.Background(), PresentationRequest{
		ChordPro:  "Words",
		FontScale: 7.0,
	})
	if err != nil {
		t.Fatalf("BuildPresentation: %v", err)
	}
	if got.FontScale != 3.0 {
		t.Errorf("fontScale = %v, want clamped to 3.0", got.FontScale)
	}
}

func TestPresentation_Errors(t *testing.T) {
	store := repository.NewMemoryRepository()
	pres := NewPresentationService(store, 0.6, 3.0)
	ctx := context.Background()

	if _, err := pres.BuildPresentation(ctx, PresentationRequest{LyricsID: "missing-id"}); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("unknown id: err = %v, want ErrEntryNotFound", err)
	}
	if _, err := pres.BuildPresentation(ctx, PresentationRequest{Title: "No Body"}); !errors.Is(err, ErrTextRequired) {
		t.Errorf("no text: err = %v, want ErrTextRequired", err)
	}
}
