package normalize

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/workstory/contentful-source/pkg/interfaces"
	"github.com/workstory/contentful-source/sync"
)

// RestrictedNodeFields are reserved by the host store's node interface. A
// content type field with one of these ids is renamed with the conflict
// prefix before emission so the host schema is never shadowed.
var RestrictedNodeFields = []string{
	"id",
	"children",
	"contentful_id",
	"parent",
	"fields",
	"internal",
}

const (
	// linkFieldSuffix marks emitted keys whose value is a node id (or an
	// ordered list of node ids) instead of a literal value.
	linkFieldSuffix = "___NODE"

	// DefaultConflictPrefix is applied to restricted field ids when the
	// caller does not configure its own prefix.
	DefaultConflictPrefix = "contentful"

	// AssetTypeName is the host store type for every asset node.
	AssetTypeName = "ContentfulAsset"
)

// CreateNodesInput carries one content type's entries plus the shared,
// read-only indexes built by the earlier stages.
type CreateNodesInput struct {
	ContentType    sync.ContentType
	Entries        []sync.Entry
	Resolvable     *ResolvableSet
	ForeignRefs    ForeignReferenceMap
	Fallbacks      FallbackChain
	Locales        []sync.Locale
	DefaultLocale  string
	SpaceID        string
	IDMode         IDMode
	ConflictPrefix string
	Writer         interfaces.NodeWriter
}

// CreateNodesForContentType materializes one flat record per entry and
// locale. Every field value is fallback-resolved; Link fields are rewritten
// to the target's canonical id (nil when unresolved); back-references from
// the foreign-reference map are attached grouped by source content type.
// Each finished record is handed to the writer exactly once, with its id
// already passed through the writer's canonicalization hook.
func CreateNodesForContentType(ctx context.Context, in CreateNodesInput) error {
	if in.Writer == nil {
		return ErrNodeWriterRequired
	}

	label := TypeLabel(in.ContentType, in.IDMode)
	typeName := TypeName(label)
	prefix := in.ConflictPrefix
	if prefix == "" {
		prefix = DefaultConflictPrefix
	}

	restricted := map[string]bool{}
	for _, name := range RestrictedNodeFields {
		restricted[name] = true
	}

	for _, locale := range in.Locales {
		for _, entry := range in.Entries {
			fields := map[string]any{}

			for _, field := range in.ContentType.Fields {
				value := in.Fallbacks.LocalizedField(entry.Fields[field.ID], locale.Code)

				key := field.ID
				if restricted[key] {
					key = prefix + key
				}

				switch {
				case field.IsLink():
					fields[key+linkFieldSuffix] = in.resolveSingleLink(value)
				case field.IsLinkArray():
					fields[key+linkFieldSuffix] = in.resolveLinkList(value)
				default:
					fields[key] = value
				}
			}

			canonical := MakeID(in.SpaceID, entry.Sys.ID, label, in.DefaultLocale, in.DefaultLocale)
			for group, ids := range groupBackReferences(in.ForeignRefs[canonical], in.DefaultLocale, in.Writer) {
				fields[group] = ids
			}

			node := &interfaces.Node{
				ID:           in.Writer.CreateNodeID(MakeID(in.SpaceID, entry.Sys.ID, label, in.DefaultLocale, locale.Code)),
				ContentfulID: entry.Sys.ID,
				SpaceID:      in.SpaceID,
				NodeLocale:   locale.Code,
				CreatedAt:    entry.Sys.CreatedAt,
				UpdatedAt:    entry.Sys.UpdatedAt,
				Fields:       fields,
				Internal:     interfaces.NodeInternal{Type: typeName},
			}
			node.Internal.ContentDigest = ContentDigest(node)

			if err := in.Writer.CreateNode(ctx, node); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveSingleLink rewrites a Link field value into the target's canonical
// node id. Unresolved targets and absent values both resolve to nil.
func (in CreateNodesInput) resolveSingleLink(value any) any {
	link, ok := linkFrom(value)
	if !ok {
		return nil
	}
	canonical, ok := in.Resolvable.CanonicalID(link, in.SpaceID, in.DefaultLocale, in.IDMode)
	if !ok {
		return nil
	}
	return in.Writer.CreateNodeID(canonical)
}

// resolveLinkList rewrites an array-of-links value into the ordered ids of
// its resolvable targets. Unresolved elements are dropped; an absent value
// resolves to nil.
func (in CreateNodesInput) resolveLinkList(value any) any {
	if value == nil {
		return nil
	}
	ids := []string{}
	for _, link := range linksFrom(value) {
		canonical, ok := in.Resolvable.CanonicalID(link, in.SpaceID, in.DefaultLocale, in.IDMode)
		if !ok {
			continue
		}
		ids = append(ids, in.Writer.CreateNodeID(canonical))
	}
	return ids
}

// groupBackReferences buckets foreign references per source content type
// under <label>___NODE keys holding the canonical source node ids.
func groupBackReferences(refs []ForeignReference, defaultLocale string, writer interfaces.NodeWriter) map[string][]string {
	if len(refs) == 0 {
		return nil
	}
	groups := map[string][]string{}
	for _, ref := range refs {
		key := camelCase(ref.Type) + linkFieldSuffix
		id := writer.CreateNodeID(MakeID(ref.SpaceID, ref.ID, ref.Type, defaultLocale, defaultLocale))
		groups[key] = append(groups[key], id)
	}
	return groups
}

// CreateAssetNodesInput carries one asset plus the shared locale indexes.
type CreateAssetNodesInput struct {
	Asset         sync.Asset
	Fallbacks     FallbackChain
	Locales       []sync.Locale
	DefaultLocale string
	SpaceID       string
	Writer        interfaces.NodeWriter
}

// CreateAssetNodes materializes one record per locale for an asset. Assets
// follow the entry emission path with a fixed field set (title, description,
// file) and no reference resolution.
func CreateAssetNodes(ctx context.Context, in CreateAssetNodesInput) error {
	if in.Writer == nil {
		return ErrNodeWriterRequired
	}

	for _, locale := range in.Locales {
		fields := map[string]any{
			"title":       in.Fallbacks.LocalizedField(in.Asset.Fields["title"], locale.Code),
			"description": in.Fallbacks.LocalizedField(in.Asset.Fields["description"], locale.Code),
			"file":        in.Fallbacks.LocalizedField(in.Asset.Fields["file"], locale.Code),
		}

		node := &interfaces.Node{
			ID:           in.Writer.CreateNodeID(MakeID(in.SpaceID, in.Asset.Sys.ID, sync.TypeAsset, in.DefaultLocale, locale.Code)),
			ContentfulID: in.Asset.Sys.ID,
			SpaceID:      in.SpaceID,
			NodeLocale:   locale.Code,
			CreatedAt:    in.Asset.Sys.CreatedAt,
			UpdatedAt:    in.Asset.Sys.UpdatedAt,
			Fields:       fields,
			Internal:     interfaces.NodeInternal{Type: AssetTypeName},
		}
		node.Internal.ContentDigest = ContentDigest(node)

		if err := in.Writer.CreateNode(ctx, node); err != nil {
			return err
		}
	}

	return nil
}

// ContentDigest derives a deterministic digest from the node's content. The
// digest field itself is excluded, so recomputing over an emitted node with
// the digest cleared reproduces the stored value. Downstream consumers use
// the digest for change detection, so it must stay stable across runs.
func ContentDigest(node *interfaces.Node) string {
	clone := *node
	clone.Internal.ContentDigest = ""

	encoded, err := json.Marshal(&clone)
	if err != nil {
		// The node is assembled from JSON-decoded values, so this only
		// fires if a caller injected an unmarshalable custom value.
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(clone.ID)).String()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, encoded).String()
}
