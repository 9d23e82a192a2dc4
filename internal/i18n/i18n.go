// Package i18n provides key-based translation lookup over embedded YAML tables.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Language identifies a translation table.
type Language string

// Supported languages.
const (
	English Language = "en"
	Russian Language = "ru"
)

// DefaultLanguage is used when no preference is stored.
const DefaultLanguage = English

// Languages lists every supported language.
func Languages() []Language {
	return []Language{English, Russian}
}

// ParseLanguage validates a language code.
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Languages() {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q (want one of en, ru)", s)
}

// Translator resolves dotted keys ("interviews.loadError") against one table.
// A Translator is immutable; use WithLanguage to switch tables.
type Translator struct {
	lang   Language
	tables map[Language]map[string]any

	// OnMissing, if set, is called for keys absent from the table.
	OnMissing func(key string, lang Language)
}

// New loads the embedded tables and returns a Translator for lang.
func New(lang Language) (*Translator, error) {
	tables := make(map[Language]map[string]any, len(Languages()))
	for _, l := range Languages() {
		data, err := localeFS.ReadFile("locales/" + string(l) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("reading %s table: %w", l, err)
		}
		var table map[string]any
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parsing %s table: %w", l, err)
		}
		tables[l] = table
	}

	if _, ok := tables[lang]; !ok {
		lang = DefaultLanguage
	}
	return &Translator{lang: lang, tables: tables}, nil
}

// MustNew is New for the embedded tables, which are known to parse.
func MustNew(lang Language) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

// Language returns the active language.
func (t *Translator) Language() Language {
	return t.lang
}

// WithLanguage returns a copy of t using lang.
func (t *Translator) WithLanguage(lang Language) *Translator {
	cp := *t
	if _, ok := t.tables[lang]; ok {
		cp.lang = lang
	}
	return &cp
}

// T returns the translation for key, or key itself when it is missing.
func (t *Translator) T(key string) string {
	return t.Tf(key, nil)
}

// Tf is T with {{name}} placeholders replaced from params.
func (t *Translator) Tf(key string, params map[string]any) string {
	var node any = t.tables[t.lang]
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return t.missing(key)
		}
		node, ok = m[part]
		if !ok {
			return t.missing(key)
		}
	}

	text, ok := node.(string)
	if !ok {
		return t.missing(key)
	}
	for name, v := range params {
		text = strings.ReplaceAll(text, "{{"+name+"}}", fmt.Sprint(v))
	}
	return text
}

func (t *Translator) missing(key string) string {
	if t.OnMissing != nil {
		t.OnMissing(key, t.lang)
	}
	return key
}
