package interfaces

import "context"

// Node is the flat, locale-resolved record emitted once per entity and
// locale. It is created during materialization, never mutated afterwards,
// and ownership passes to the host store on CreateNode.
type Node struct {
	// ID is the synthesized identifier after the host's CreateNodeID hook
	// has been applied.
	ID string `json:"id"`

	// ContentfulID preserves the raw upstream entity id shared by every
	// locale variant of the same entity.
	ContentfulID string `json:"contentful_id"`

	SpaceID    string `json:"spaceId,omitempty"`
	NodeLocale string `json:"node_locale"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`

	// Parent and Children exist for the host store's node graph; the
	// pipeline emits them empty.
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`

	// Fields holds the localized field values, resolved link ids under
	// <fieldID>___NODE keys, and back-reference groups. Keys never shadow
	// the reserved node fields; colliding names arrive already renamed.
	Fields map[string]any `json:"fields,omitempty"`

	Internal NodeInternal `json:"internal"`
}

// NodeInternal carries the host store's type system metadata.
type NodeInternal struct {
	Type          string `json:"type"`
	ContentDigest string `json:"contentDigest"`
	Owner         string `json:"owner,omitempty"`
}

// NodeWriter is the host store boundary. The pipeline calls CreateNodeID to
// let the host remap a synthesized id into its own namespace, then hands the
// finished record to CreateNode exactly once.
type NodeWriter interface {
	CreateNodeID(rawID string) string
	CreateNode(ctx context.Context, node *Node) error
}
