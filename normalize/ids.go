package normalize

import (
	"strings"
	"unicode"

	"github.com/workstory/contentful-source/sync"
)

const idSeparator = "___"

// IDMode selects which label represents a content type inside synthesized
// ids. Both shapes exist in historical snapshots, so the choice stays an
// explicit option instead of being inferred from the data.
type IDMode string

const (
	// IDModeName uses the human-readable content type name (historical
	// default).
	IDModeName IDMode = "name"
	// IDModeID uses the raw content type sys id.
	IDModeID IDMode = "id"
)

// Valid reports whether the mode is one of the supported values.
func (m IDMode) Valid() bool {
	return m == IDModeName || m == IDModeID
}

// MakeID synthesizes the stable identifier for an entity in one locale. The
// current locale is appended only when it differs from the default locale:
// the default-locale record keeps the short canonical id that unlocalized
// relations point at, while every other locale variant gets a disambiguated
// id. Same inputs always produce the same string.
func MakeID(spaceID, entityID, typeLabel, defaultLocale, currentLocale string) string {
	if currentLocale == defaultLocale {
		return spaceID + idSeparator + entityID + idSeparator + typeLabel
	}
	return spaceID + idSeparator + entityID + idSeparator + typeLabel + idSeparator + currentLocale
}

// TypeLabel returns the identifier segment representing a content type under
// the given mode.
func TypeLabel(contentType sync.ContentType, mode IDMode) string {
	if mode == IDModeID {
		return contentType.Sys.ID
	}
	return contentType.Name
}

// TypeName derives the host store type from a content type label, e.g.
// "Blog Post" becomes "ContentfulBlogPost".
func TypeName(typeLabel string) string {
	return "Contentful" + upperFirst(camelCase(typeLabel))
}

// camelCase lower-camel-cases a label: words are split on any
// non-alphanumeric rune, the first word is lower-cased and the rest are
// capitalized.
func camelCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	for i, word := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(word))
			continue
		}
		b.WriteString(upperFirst(strings.ToLower(word)))
	}
	return b.String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
