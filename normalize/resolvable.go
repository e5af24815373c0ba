package normalize

import (
	"github.com/workstory/contentful-source/sync"
)

// ResolvedEntry pairs an entry with the schema it belongs to so link
// resolution can synthesize the target's identifier.
type ResolvedEntry struct {
	Entry       sync.Entry
	ContentType sync.ContentType
}

// ResolvableSet indexes every entry and asset that may serve as a link
// target. It is built once per snapshot and treated as read-only by every
// later stage.
type ResolvableSet struct {
	entries map[string]ResolvedEntry
	assets  map[string]sync.Asset
}

// BuildResolvableSetInput carries the merged, grouped snapshot data.
type BuildResolvableSetInput struct {
	ContentTypes []sync.ContentType
	EntryList    EntryList
	Assets       []sync.Asset
}

type entryIdentity struct {
	contentTypeID string
	entryID       string
}

// BuildResolvableSet indexes entries by id (remembering their content type)
// and assets by id. Seeing the same (content type, entry id) pair twice is
// an internal consistency violation of the merge stage and fails with a
// DuplicateIDError.
func BuildResolvableSet(in BuildResolvableSetInput) (*ResolvableSet, error) {
	set := &ResolvableSet{
		entries: map[string]ResolvedEntry{},
		assets:  map[string]sync.Asset{},
	}

	seen := map[entryIdentity]bool{}
	for i, contentType := range in.ContentTypes {
		if i >= len(in.EntryList) {
			break
		}
		for _, entry := range in.EntryList[i] {
			identity := entryIdentity{contentTypeID: contentType.Sys.ID, entryID: entry.Sys.ID}
			if seen[identity] {
				return nil, &DuplicateIDError{ContentTypeID: identity.contentTypeID, EntryID: identity.entryID}
			}
			seen[identity] = true
			set.entries[entry.Sys.ID] = ResolvedEntry{Entry: entry, ContentType: contentType}
		}
	}

	for _, asset := range in.Assets {
		set.assets[asset.Sys.ID] = asset
	}

	return set, nil
}

// Entry returns the indexed entry for an id.
func (s *ResolvableSet) Entry(id string) (ResolvedEntry, bool) {
	entry, ok := s.entries[id]
	return entry, ok
}

// Asset returns the indexed asset for an id.
func (s *ResolvableSet) Asset(id string) (sync.Asset, bool) {
	asset, ok := s.assets[id]
	return asset, ok
}

// CanonicalID resolves a raw link against the set and synthesizes the
// target's default-locale identifier. The second return is false when the
// target is not resolvable, which is normal for excluded or deleted
// entities and must not surface as an error.
func (s *ResolvableSet) CanonicalID(link sync.LinkSys, spaceID, defaultLocale string, mode IDMode) (string, bool) {
	switch link.LinkType {
	case sync.TypeAsset:
		if _, ok := s.assets[link.ID]; !ok {
			return "", false
		}
		return MakeID(spaceID, link.ID, sync.TypeAsset, defaultLocale, defaultLocale), true
	default:
		resolved, ok := s.entries[link.ID]
		if !ok {
			return "", false
		}
		label := TypeLabel(resolved.ContentType, mode)
		return MakeID(spaceID, link.ID, label, defaultLocale, defaultLocale), true
	}
}
