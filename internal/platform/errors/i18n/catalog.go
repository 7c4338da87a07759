// Package i18n renders user-facing messages for domain error codes.
package i18n

import (
	"bytes"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the fallback locale.
var BaseLocale = language.AmericanEnglish

// Catalog maps error codes to message templates for one locale.
type Catalog struct {
	locale   language.Tag
	messages map[Code]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[language.Tag]*Catalog{
		language.AmericanEnglish:     NewCatalog(language.AmericanEnglish, enUS),
		language.BrazilianPortuguese: NewCatalog(language.BrazilianPortuguese, ptBR),
	}
	matcher = buildMatcher()
)

// NewCatalog creates a catalog for locale.
func NewCatalog(locale language.Tag, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{locale: locale, messages: cloned}
}

// RegisterCatalog adds or replaces the catalog for its locale.
func RegisterCatalog(cat *Catalog) {
	if cat == nil {
		return
	}
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[cat.locale] = cat
	matcher = buildMatcherLocked()
}

// ForAcceptLanguage picks the best catalog for an Accept-Language header,
// falling back to the base locale.
func ForAcceptLanguage(header string) *Catalog {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return catalogs[BaseLocale]
	}
	_, index, confidence := matcher.m.Match(tags...)
	if confidence == language.No {
		return catalogs[BaseLocale]
	}
	return catalogs[matcher.tags[index]]
}

// Locale returns the BCP 47 tag of the catalog.
func (c *Catalog) Locale() string {
	return c.locale.String()
}

// Format renders the template for code with metadata. Unknown codes render
// as the code itself.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

type localeMatcher struct {
	m    language.Matcher
	tags []language.Tag
}

func buildMatcher() localeMatcher {
	return buildMatcherLocked()
}

// buildMatcherLocked keeps the base locale first so it wins ties.
func buildMatcherLocked() localeMatcher {
	tags := []language.Tag{BaseLocale}
	for tag := range catalogs {
		if tag != BaseLocale {
			tags = append(tags, tag)
		}
	}
	return localeMatcher{m: language.NewMatcher(tags), tags: tags}
}
