package passage

import (
	"context"
	"testing"
)

func fakeProvider(t *testing.T) *FileProvider {
	t.Helper()
	return NewFileProvider("testdata", []Source{{Code: "FAKE", File: "fake.json"}})
}

func TestFileProvider_ResolvesVerseRange(t *testing.T) {
	p := fakeProvider(t)
	ctx := context.Background()

	got, err := p.GetPassage(ctx, "FAKE", "John 3:16-18")
	if err != nil {
		t.Fatalf("GetPassage: %v", err)
	}
	if got == nil {
		t.Fatal("passage should resolve")
	}
	if got.Translation != "FAKE" {
		t.Errorf("translation = %q", got.Translation)
	}
	if got.Reference != "John 3:16-18" {
		t.Errorf("reference = %q, want %q", got.Reference, "John 3:16-18")
	}
	if len(got.Verses) != 3 {
		t.Fatalf("verses = %d, want 3", len(got.Verses))
	}
	if got.Verses[0].Verse != 16 || got.Verses[2].Verse != 18 {
		t.Errorf("verse numbers = %d..%d, want 16..18", got.Verses[0].Verse, got.Verses[2].Verse)
	}
	if got.Verses[0].Book != "John" || got.Verses[0].Chapter != 3 {
		t.Errorf("verse identity = %s %d", got.Verses[0].Book, got.Verses[0].Chapter)
	}
	if got.Attribution == nil || !got.Attribution.Required {
		t.Error("attribution should be carried through")
	}
	if got.CachePolicy != "cache-forever" {
		t.Errorf("cachePolicy = %q", got.CachePolicy)
	}
}

func TestFileProvider_WholeChapterLabel(t *testing.T) {
	p := fakeProvider(t)

	got, err := p.GetPassage(context.Background(), "fake", "Psalm 23")
	if err != nil {
		t.Fatalf("GetPassage: %v", err)
	}
	if got == nil {
		t.Fatal("passage should resolve")
	}
	if got.Reference != "Psalm 23" {
		t.Errorf("reference = %q, want %q", got.Reference, "Psalm 23")
	}
	if len(got.Verses) != 3 {
		t.Errorf("verses = %d, want the whole chapter", len(got.Verses))
	}
}

func TestFileProvider_DiscontiguousRangesLabel(t *testing.T) {
	p := fakeProvider(t)

	got, err := p.GetPassage(context.Background(), "FAKE", "John 3:14-15,17")
	if err != nil {
		t.Fatalf("GetPassage: %v", err)
	}
	if got == nil {
		t.Fatal("passage should resolve")
	}
	if got.Reference != "John 3:14-15,17" {
		t.Errorf("reference = %q, want %q", got.Reference, "John 3:14-15,17")
	}
	if len(got.Verses) != 3 {
		t.Errorf("verses = %d, want 3", len(got.Verses))
	}
}

func TestFileProvider_AliasAndPrefixLookup(t *testing.T) {
	p := fakeProvider(t)
	ctx := context.Background()

	for _, ref := range []string{"Joh 3:16", "johannes 3:16", "1. Johannes 4:7", "1joh 4:7"} {
		got, err := p.GetPassage(ctx, "FAKE", ref)
		if err != nil {
			t.Fatalf("GetPassage(%q): %v", ref, err)
		}
		if got == nil {
			t.Errorf("GetPassage(%q) = nil, want a passage", ref)
		}
	}

	// "J 3" prefixes John, Jn, Joh and Johannes, all the same book, so it
	// still resolves; an ambiguous prefix across distinct books must not.
	got, err := p.GetPassage(ctx, "FAKE", "J 3:16")
	if err != nil {
		t.Fatalf("GetPassage: %v", err)
	}
	if got == nil {
		t.Error("unambiguous prefix should resolve")
	}
}

func TestFileProvider_Misses(t *testing.T) {
	p := fakeProvider(t)
	ctx := context.Background()

	cases := map[string][2]string{
		"unknown translation": {"NOPE", "John 3:16"},
		"unknown book":        {"FAKE", "Genesis 1:1"},
		"unknown chapter":     {"FAKE", "John 99:1"},
		"verses out of range": {"FAKE", "John 3:200-210"},
		"unparsable":          {"FAKE", "nonsense"},
	}
	for name, c := range cases {
		got, err := p.GetPassage(ctx, c[0], c[1])
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if got != nil {
			t.Errorf("%s: got %+v, want nil", name, got)
		}
	}
}

func TestFileProvider_MissingFileSurfacesError(t *testing.T) {
	p := NewFileProvider("testdata", []Source{{Code: "GHOST", File: "ghost.json"}})

	if !p.CanHandle("ghost") {
		t.Fatal("registered code should be handled")
	}
	_, err := p.GetPassage(context.Background(), "GHOST", "John 3:16")
	if err == nil {
		t.Error("missing file should surface as an error")
	}
}

func TestReadService_RoutesByTranslation(t *testing.T) {
	svc := NewReadService(fakeProvider(t))
	ctx := context.Background()

	got, err := svc.Resolve(ctx, "FAKE", "John 3:16")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil {
		t.Error("registered translation should resolve")
	}

	got, err = svc.Resolve(ctx, "OTHER", "John 3:16")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != nil {
		t.Error("unregistered translation should be a silent miss")
	}

	codes := svc.Translations()
	if len(codes) != 1 || codes[0] != "FAKE" {
		t.Errorf("translations = %v, want [FAKE]", codes)
	}
}
