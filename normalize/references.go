package normalize

import (
	"github.com/workstory/contentful-source/sync"
)

// ForeignReference records one entry linking at a target entity.
type ForeignReference struct {
	// ID is the raw id of the linking entry.
	ID string
	// Type is the linking entry's content type label under the active id
	// mode; back-reference groups and source identifiers derive from it.
	Type string
	// SpaceID is carried so source identifiers can be synthesized without
	// consulting the build input again.
	SpaceID string
}

// ForeignReferenceMap is the inverted reference index: for every target
// entity's canonical (default locale) id, the entries linking to it in
// schema-then-entry order.
type ForeignReferenceMap map[string][]ForeignReference

// BuildForeignReferenceMapInput carries everything the reverse pass needs.
type BuildForeignReferenceMapInput struct {
	ContentTypes  []sync.ContentType
	EntryList     EntryList
	Resolvable    *ResolvableSet
	Locales       []sync.Locale
	DefaultLocale string
	SpaceID       string
	IDMode        IDMode
}

// BuildForeignReferenceMap walks every Link-typed field of every entry, in
// every locale the field has a value for, and records the linking entry
// against the target's canonical id. Links whose target is missing from the
// resolvable set are skipped silently; partially synced or filtered spaces
// produce those routinely.
func BuildForeignReferenceMap(in BuildForeignReferenceMapInput) ForeignReferenceMap {
	refs := ForeignReferenceMap{}

	for i, contentType := range in.ContentTypes {
		if i >= len(in.EntryList) {
			continue
		}
		label := TypeLabel(contentType, in.IDMode)

		for _, entry := range in.EntryList[i] {
			source := ForeignReference{ID: entry.Sys.ID, Type: label, SpaceID: in.SpaceID}

			for _, field := range contentType.Fields {
				if !field.IsLink() && !field.IsLinkArray() {
					continue
				}
				values, defined := entry.Fields[field.ID]
				if !defined {
					continue
				}

				for _, locale := range in.Locales {
					value, defined := values[locale.Code]
					if !defined {
						continue
					}
					for _, link := range linksFrom(value) {
						target, ok := in.Resolvable.CanonicalID(link, in.SpaceID, in.DefaultLocale, in.IDMode)
						if !ok {
							continue
						}
						refs[target] = append(refs[target], source)
					}
				}
			}
		}
	}

	return refs
}

// linkFrom extracts the raw link descriptor from an untyped field value.
// Values arrive either as decoded JSON maps or as typed links built by
// callers assembling pages in code.
func linkFrom(value any) (sync.LinkSys, bool) {
	switch v := value.(type) {
	case sync.Link:
		return v.Sys, v.Sys.ID != ""
	case *sync.Link:
		if v == nil {
			return sync.LinkSys{}, false
		}
		return v.Sys, v.Sys.ID != ""
	case map[string]any:
		rawSys, ok := v["sys"].(map[string]any)
		if !ok {
			return sync.LinkSys{}, false
		}
		sysType, _ := rawSys["type"].(string)
		if sysType != "Link" {
			return sync.LinkSys{}, false
		}
		id, _ := rawSys["id"].(string)
		if id == "" {
			return sync.LinkSys{}, false
		}
		linkType, _ := rawSys["linkType"].(string)
		return sync.LinkSys{Type: sysType, LinkType: linkType, ID: id}, true
	}
	return sync.LinkSys{}, false
}

// linksFrom flattens a field value into its link descriptors: one for a
// single Link value, one per element for an array of links.
func linksFrom(value any) []sync.LinkSys {
	switch v := value.(type) {
	case []any:
		links := make([]sync.LinkSys, 0, len(v))
		for _, item := range v {
			if link, ok := linkFrom(item); ok {
				links = append(links, link)
			}
		}
		return links
	case []sync.Link:
		links := make([]sync.LinkSys, 0, len(v))
		for _, item := range v {
			if link, ok := linkFrom(item); ok {
				links = append(links, link)
			}
		}
		return links
	}
	if link, ok := linkFrom(value); ok {
		return []sync.LinkSys{link}
	}
	return nil
}
