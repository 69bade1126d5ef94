// Package i18n loads the embedded message catalogues and adapts them to
// render.Translator.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/goliatone/go-formdispatch/pkg/render"
)

//go:embed locales/active.*.toml
var embeddedLocales embed.FS

// DefaultLanguage is used when a locale is empty or unknown.
const DefaultLanguage = "en"

// Translations wraps a go-i18n bundle with one cached localizer per locale.
type Translations struct {
	bundle     *i18n.Bundle
	mu         sync.Mutex
	localizers map[string]*i18n.Localizer
}

var _ render.Translator = (*Translations)(nil)

// NewTranslations loads the embedded catalogues plus any active.*.toml files
// from extra.
func NewTranslations(extra ...fs.FS) (*Translations, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	sources := append([]fs.FS{embeddedLocales}, extra...)
	for _, files := range sources {
		if files == nil {
			continue
		}
		names, err := fs.Glob(files, "locales/active.*.toml")
		if err != nil {
			return nil, fmt.Errorf("i18n: read locales: %w", err)
		}
		for _, name := range names {
			data, err := fs.ReadFile(files, name)
			if err != nil {
				return nil, fmt.Errorf("i18n: read %s: %w", name, err)
			}
			if _, err := bundle.ParseMessageFileBytes(data, path.Base(name)); err != nil {
				return nil, fmt.Errorf("i18n: load %s: %w", name, err)
			}
		}
	}

	return &Translations{
		bundle:     bundle,
		localizers: make(map[string]*i18n.Localizer),
	}, nil
}

// Languages lists the loaded language tags.
func (t *Translations) Languages() []string {
	tags := t.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}

// Supports reports whether locale has a catalogue.
func (t *Translations) Supports(locale string) bool {
	for _, lang := range t.Languages() {
		if lang == locale {
			return true
		}
	}
	return false
}

// Translate resolves key for locale. A map[string]any argument becomes the
// template data; an int argument becomes the plural count.
func (t *Translations) Translate(locale, key string, args ...any) (string, error) {
	cfg := &i18n.LocalizeConfig{MessageID: key}
	for _, arg := range args {
		switch v := arg.(type) {
		case map[string]any:
			cfg.TemplateData = v
		case int:
			cfg.PluralCount = v
		}
	}
	if cfg.PluralCount != nil {
		data, _ := cfg.TemplateData.(map[string]any)
		if data == nil {
			data = map[string]any{}
		}
		if _, ok := data["Count"]; !ok {
			data["Count"] = cfg.PluralCount
		}
		cfg.TemplateData = data
	}
	return t.localizer(locale).Localize(cfg)
}

// Message translates key and falls back to the key itself.
func (t *Translations) Message(locale, key string, args ...any) string {
	msg, err := t.Translate(locale, key, args...)
	if err != nil {
		return key
	}
	return msg
}

func (t *Translations) localizer(locale string) *i18n.Localizer {
	if locale == "" {
		locale = DefaultLanguage
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.localizers[locale]; ok {
		return l
	}
	l := i18n.NewLocalizer(t.bundle, locale, DefaultLanguage)
	t.localizers[locale] = l
	return l
}
