package i18n

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/trio-pos/internal/localstore"
	"github.com/angelmondragon/trio-pos/internal/page"
)

const tamilCartEmpty = "கார்ட் காலியாக உள்ளது"

func TestTablesShareKeys(t *testing.T) {
	if n := len(translations[English]); n != 17 {
		t.Fatalf("expected 17 english keys, got %d", n)
	}
	for key := range translations[English] {
		if _, ok := translations[Tamil][key]; !ok {
			t.Fatalf("tamil table missing %q", key)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"en":    English,
		"ta":    Tamil,
		"ta-IN": Tamil,
		"en-GB": English,
		"fr":    English,
		"":      English,
		"%%":    English,
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInitReadsSavedPreference(t *testing.T) {
	store := localstore.NewMemoryStore()
	if err := store.Set(context.Background(), StorageKey, "ta"); err != nil {
		t.Fatalf("seed preference: %v", err)
	}
	p := page.New()

	tr := New(store, p, "en", nil)
	tr.Init(context.Background())

	if tr.Language() != Tamil {
		t.Fatalf("expected tamil, got %q", tr.Language())
	}
	if got := p.Text(page.IDCartItems); got != tamilCartEmpty {
		t.Fatalf("expected translated cart text, got %q", got)
	}
}

func TestInitDefaultsToEnglish(t *testing.T) {
	tr := New(localstore.NewMemoryStore(), page.New(), "", nil)
	tr.Init(context.Background())
	if tr.Language() != English {
		t.Fatalf("expected english, got %q", tr.Language())
	}
}

func TestToggleLanguagePersistsAndTranslates(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemoryStore()
	p := page.New()
	tr := New(store, p, "en", nil)
	tr.Init(ctx)

	lang, err := tr.ToggleLanguage(ctx)
	if err != nil || lang != Tamil {
		t.Fatalf("expected tamil, got %q err=%v", lang, err)
	}

	saved, ok, err := store.Get(ctx, StorageKey)
	if err != nil || !ok || saved != Tamil {
		t.Fatalf("expected saved tamil, got %q ok=%v err=%v", saved, ok, err)
	}
	if got := p.Text(page.IDCartItems); got != tamilCartEmpty {
		t.Fatalf("expected translated cart text, got %q", got)
	}

	lang, err = tr.ToggleLanguage(ctx)
	if err != nil || lang != English {
		t.Fatalf("expected english, got %q err=%v", lang, err)
	}
	if got := p.Text(page.IDCartItems); got != "Cart is empty" {
		t.Fatalf("expected english cart text, got %q", got)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk full")
}

func (failingStore) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestToggleSurvivesStoreFailure(t *testing.T) {
	tr := New(failingStore{}, page.New(), "en", nil)
	tr.Init(context.Background())

	lang, err := tr.ToggleLanguage(context.Background())
	if err == nil {
		t.Fatal("expected the store error")
	}
	if lang != Tamil || tr.Language() != Tamil {
		t.Fatalf("expected the switch to stick, got %q / %q", lang, tr.Language())
	}
}

func TestTranslateFallsBackToEnglishThenKey(t *testing.T) {
	translations[English]["offers"] = "Offers"
	t.Cleanup(func() { delete(translations[English], "offers") })

	tr := New(nil, nil, "ta", nil)
	cases := map[string]string{
		"offers":      "Offers",
		"price":       "விலை",
		"unknown_key": "unknown_key",
	}
	for key, want := range cases {
		if got := tr.Translate(key); got != want {
			t.Fatalf("Translate(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestApplyTranslationsSkipsUnknownKeys(t *testing.T) {
	p, err := page.Parse(strings.NewReader(`<html><body><span id="x" data-i18n="not_a_key">keep me</span></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tr := New(nil, p, "ta", nil)
	tr.ApplyTranslations()
	if got := p.Text("x"); got != "keep me" {
		t.Fatalf("expected untouched text, got %q", got)
	}
}
