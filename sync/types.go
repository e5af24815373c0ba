// Package sync models the Contentful incremental sync feed and folds its
// paginated deltas into one consistent snapshot.
package sync

// Entity type labels used by the Contentful sync feed.
const (
	TypeEntry = "Entry"
	TypeAsset = "Asset"
)

// Field type tags carried by content type field definitions.
const (
	FieldTypeSymbol = "Symbol"
	FieldTypeText   = "Text"
	FieldTypeLink   = "Link"
	FieldTypeArray  = "Array"
)

// LinkSys is the inner descriptor of a raw Contentful link.
type LinkSys struct {
	Type     string `json:"type"`
	LinkType string `json:"linkType,omitempty"`
	ID       string `json:"id"`
}

// Link is the raw reference shape Contentful uses to point at entries,
// assets, spaces and content types.
type Link struct {
	Sys LinkSys `json:"sys"`
}

// Sys carries the system metadata attached to every synced item.
type Sys struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ContentType *Link  `json:"contentType,omitempty"`
	Space       *Link  `json:"space,omitempty"`
	Revision    int    `json:"revision,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// FieldValues maps a field id to its per-locale values. Values stay untyped
// until the materializer dispatches on the owning field definition.
type FieldValues map[string]map[string]any

// Entry is one upserted entry as delivered by the sync feed.
type Entry struct {
	Sys    Sys         `json:"sys"`
	Fields FieldValues `json:"fields"`
}

// ContentTypeID returns the sys id of the entry's content type, or "" when
// the feed omitted the content type link.
func (e Entry) ContentTypeID() string {
	if e.Sys.ContentType == nil {
		return ""
	}
	return e.Sys.ContentType.Sys.ID
}

// Asset is one upserted asset. Assets share the entry envelope but carry a
// fixed field set (title, description, file).
type Asset struct {
	Sys    Sys         `json:"sys"`
	Fields FieldValues `json:"fields"`
}

// DeletedItem is a tombstone from the sync feed. Only the sys id matters for
// merging.
type DeletedItem struct {
	Sys Sys `json:"sys"`
}

// Page is one paginated sync delta. Upserts and deletions in the same page
// are applied in that order.
type Page struct {
	Entries        []Entry       `json:"entries"`
	Assets         []Asset       `json:"assets"`
	DeletedEntries []DeletedItem `json:"deletedEntries,omitempty"`
	DeletedAssets  []DeletedItem `json:"deletedAssets,omitempty"`
}

// FieldDefinition describes one typed field of a content type.
type FieldDefinition struct {
	ID       string      `json:"id"`
	Name     string      `json:"name,omitempty"`
	Type     string      `json:"type"`
	LinkType string      `json:"linkType,omitempty"`
	Items    *FieldItems `json:"items,omitempty"`
	Required bool        `json:"required,omitempty"`
}

// FieldItems describes the element type of an Array field.
type FieldItems struct {
	Type     string `json:"type"`
	LinkType string `json:"linkType,omitempty"`
}

// IsLink reports whether the field holds a single link value.
func (f FieldDefinition) IsLink() bool {
	return f.Type == FieldTypeLink
}

// IsLinkArray reports whether the field holds an ordered list of links.
func (f FieldDefinition) IsLinkArray() bool {
	return f.Type == FieldTypeArray && f.Items != nil && f.Items.Type == FieldTypeLink
}

// ContentType is the schema for one content type: a display name plus an
// ordered list of typed field definitions.
type ContentType struct {
	Sys    Sys               `json:"sys"`
	Name   string            `json:"name"`
	Fields []FieldDefinition `json:"fields"`
}

// Locale describes one space locale. Exactly one locale in a space is the
// default; fallback chains terminate at the default or at a locale without
// a fallback code.
type Locale struct {
	Code         string `json:"code"`
	Name         string `json:"name,omitempty"`
	Default      bool   `json:"default,omitempty"`
	FallbackCode string `json:"fallbackCode,omitempty"`
}

// Snapshot is the consistent state produced by folding every sync page.
// Entries and assets keep first-seen order; the deleted id lists hold ids
// that were tombstoned and never resurrected by a later upsert.
type Snapshot struct {
	Entries         []Entry
	Assets          []Asset
	DeletedEntryIDs []string
	DeletedAssetIDs []string
}
