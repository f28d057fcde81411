// Package i18n translates the billing page between English and Tamil and remembers the
// operator's choice in the terminal's local store.
package i18n

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/trio-pos/internal/localstore"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"golang.org/x/net/html"
	"golang.org/x/text/language"
)

// StorageKey is the local store entry holding the language code.
const StorageKey = "language"

var matcher = language.NewMatcher([]language.Tag{language.English, language.Tamil})

// Translator owns the current language.
type Translator struct {
	mu    sync.RWMutex
	lang  string
	store localstore.Store
	page  *page.Page
	logg  *logger.Logger
}

func New(store localstore.Store, p *page.Page, defaultLang string, logg *logger.Logger) *Translator {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Translator{
		lang:  Normalize(defaultLang),
		store: store,
		page:  p,
		logg:  logg,
	}
}

// Normalize maps a stored or configured code onto en or ta. Anything else is English.
func Normalize(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No || idx != 1 {
		return English
	}
	return Tamil
}

// Init loads the saved preference and translates the page. A missing or unreadable
// preference keeps the default.
func (t *Translator) Init(ctx context.Context) {
	if t.store != nil {
		saved, ok, err := t.store.Get(ctx, StorageKey)
		switch {
		case err != nil:
			t.logg.Warn(t.logg.WithField(ctx, "error", err.Error()), "language preference unavailable")
		case ok:
			t.mu.Lock()
			t.lang = Normalize(saved)
			t.mu.Unlock()
		}
	}
	t.ApplyTranslations()
}

// Language returns the current code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// ToggleLanguage flips between English and Tamil, persists the choice and re-translates the
// page. A persistence failure is returned but the switch still takes effect.
func (t *Translator) ToggleLanguage(ctx context.Context) (string, error) {
	t.mu.Lock()
	if t.lang == English {
		t.lang = Tamil
	} else {
		t.lang = English
	}
	next := t.lang
	t.mu.Unlock()

	var err error
	if t.store != nil {
		if err = t.store.Set(ctx, StorageKey, next); err != nil {
			t.logg.Error(ctx, "failed to persist language preference", err)
		}
	}
	t.ApplyTranslations()
	return next, err
}

// ApplyTranslations rewrites every data-i18n node whose key the current language defines and
// updates the document language.
func (t *Translator) ApplyTranslations() {
	if t.page == nil {
		return
	}
	lang := t.Language()
	table := translations[lang]
	t.page.Walk(func(n *html.Node) {
		if n.Data == "html" {
			page.SetAttr(n, "lang", lang)
			return
		}
		key := page.GetAttr(n, page.AttrI18n)
		if key == "" {
			return
		}
		if text, ok := table[key]; ok {
			page.ReplaceChildren(n, page.Txt(text))
		}
	})
}

// Translate returns the text for key in the current language, then English, then the key.
func (t *Translator) Translate(key string) string {
	if text, ok := translations[t.Language()][key]; ok {
		return text
	}
	if text, ok := translations[English][key]; ok {
		return text
	}
	return key
}
