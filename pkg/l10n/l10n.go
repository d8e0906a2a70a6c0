// Package l10n resolves user-facing message keys to localized strings.
// Resolution never fails: an unsupported language falls back to English,
// and an unknown key resolves to the key itself.
package l10n

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var rawMessages []byte

// Bundle holds immutable per-language message tables, built once at startup.
type Bundle struct {
	tables map[string]map[string]string
}

var defaultBundle = func() *Bundle {
	b, err := NewBundle(rawMessages)
	if err != nil {
		panic(fmt.Sprintf("l10n: embedded messages.yaml is invalid: %v", err))
	}
	return b
}()

// Default returns the bundle built from the embedded message tables.
func Default() *Bundle { return defaultBundle }

// NewBundle parses YAML message tables keyed by language, then by message key.
func NewBundle(raw []byte) (*Bundle, error) {
	tables := make(map[string]map[string]string)
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("parsing message tables: %w", err)
	}
	return &Bundle{tables: tables}, nil
}

// Resolve returns the message for key in the given locale. Lookup order is
// exact language match, then English, then the key verbatim.
func (b *Bundle) Resolve(key, locale string) string {
	lang := baseLanguage(locale)
	if table, ok := b.tables[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if table, ok := b.tables["en"]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return key
}

// Languages reports which language tables the bundle carries.
func (b *Bundle) Languages() []string {
	langs := make([]string, 0, len(b.tables))
	for lang := range b.tables {
		langs = append(langs, lang)
	}
	return langs
}

// baseLanguage extracts the primary language subtag, lower-cased. "es-MX",
// "es_MX", and "ES" all resolve to "es". Unparseable locales degrade to a
// manual split rather than an error.
func baseLanguage(locale string) string {
	if locale == "" {
		return "en"
	}
	if tag, err := language.Parse(locale); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	locale = strings.ToLower(locale)
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		return locale[:i]
	}
	return locale
}
