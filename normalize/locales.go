// Package normalize turns a merged sync snapshot into flat, locale-resolved
// records: it resolves locale fallback chains per field, rewrites entry and
// asset links into stable node identifiers, inverts references into a
// foreign-reference index and materializes one record per entity and locale.
package normalize

import (
	"github.com/workstory/contentful-source/sync"
)

// FallbackChain maps a locale code to its immediate fallback code. Locales
// without a fallback map to the empty string; walking the map repeatedly
// yields the full chain for any code.
type FallbackChain map[string]string

// BuildFallbackChain indexes the fallback code of every locale. It rejects
// configurations whose fallback points at an unknown code or whose chain
// never terminates, so resolution can walk the chain without guarding
// against infinite loops.
func BuildFallbackChain(locales []sync.Locale) (FallbackChain, error) {
	chain := make(FallbackChain, len(locales))
	for _, locale := range locales {
		chain[locale.Code] = locale.FallbackCode
	}

	for _, locale := range locales {
		if fallback := locale.FallbackCode; fallback != "" {
			if _, known := chain[fallback]; !known {
				return nil, &ConfigurationError{
					LocaleCode:   locale.Code,
					FallbackCode: fallback,
					Reason:       ErrLocaleFallbackUnknown,
				}
			}
		}
	}

	for _, locale := range locales {
		visited := map[string]bool{}
		for code := locale.Code; code != ""; code = chain[code] {
			if visited[code] {
				return nil, &ConfigurationError{
					LocaleCode:   locale.Code,
					FallbackCode: code,
					Reason:       ErrLocaleFallbackCycle,
				}
			}
			visited[code] = true
		}
	}

	return chain, nil
}

// LocalizedField resolves a per-locale field for the requested locale code,
// walking the fallback chain until a defined value is found. Defined falsy
// values (0, false, "") are returned as-is; nil is returned only once the
// chain is exhausted.
func (c FallbackChain) LocalizedField(field map[string]any, localeCode string) any {
	if len(field) == 0 {
		return nil
	}

	visited := map[string]bool{}
	for code := localeCode; code != "" && !visited[code]; {
		visited[code] = true
		if value, defined := field[code]; defined {
			return value
		}
		next, known := c[code]
		if !known {
			return nil
		}
		code = next
	}
	return nil
}

// DefaultLocale returns the single locale flagged as default.
func DefaultLocale(locales []sync.Locale) (sync.Locale, error) {
	var found *sync.Locale
	for i := range locales {
		if !locales[i].Default {
			continue
		}
		if found != nil {
			return sync.Locale{}, ErrDefaultLocaleRequired
		}
		found = &locales[i]
	}
	if found == nil {
		return sync.Locale{}, ErrDefaultLocaleRequired
	}
	return *found, nil
}
