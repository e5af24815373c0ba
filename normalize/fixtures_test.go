package normalize

import (
	"context"
	"testing"

	"github.com/workstory/contentful-source/pkg/interfaces"
	"github.com/workstory/contentful-source/sync"
)

const testSpaceID = "space"

func entryLink(id string) map[string]any {
	return map[string]any{
		"sys": map[string]any{"type": "Link", "linkType": "Entry", "id": id},
	}
}

func assetLink(id string) map[string]any {
	return map[string]any{
		"sys": map[string]any{"type": "Link", "linkType": "Asset", "id": id},
	}
}

func productContentType() sync.ContentType {
	return sync.ContentType{
		Sys:  sync.Sys{ID: "product", Type: "ContentType"},
		Name: "Product",
		Fields: []sync.FieldDefinition{
			{ID: "title", Type: sync.FieldTypeSymbol},
			{ID: "brand", Type: sync.FieldTypeLink, LinkType: sync.TypeEntry},
			{ID: "image", Type: sync.FieldTypeLink, LinkType: sync.TypeAsset},
			{ID: "related", Type: sync.FieldTypeArray, Items: &sync.FieldItems{Type: sync.FieldTypeLink, LinkType: sync.TypeEntry}},
		},
	}
}

func brandContentType() sync.ContentType {
	return sync.ContentType{
		Sys:  sync.Sys{ID: "brand", Type: "ContentType"},
		Name: "Brand",
		Fields: []sync.FieldDefinition{
			{ID: "name", Type: sync.FieldTypeSymbol},
			{ID: "website", Type: sync.FieldTypeSymbol},
		},
	}
}

func testContentTypes() []sync.ContentType {
	return []sync.ContentType{productContentType(), brandContentType()}
}

func productEntry() sync.Entry {
	return sync.Entry{
		Sys: sync.Sys{
			ID:          "p1",
			Type:        sync.TypeEntry,
			ContentType: &sync.Link{Sys: sync.LinkSys{Type: "Link", LinkType: "ContentType", ID: "product"}},
			CreatedAt:   "2024-03-01T10:00:00Z",
			UpdatedAt:   "2024-03-02T10:00:00Z",
		},
		Fields: sync.FieldValues{
			"title": {
				"en-US": "Classic Car",
				"de":    "Klassisches Auto",
			},
			"brand":   {"en-US": entryLink("b1")},
			"image":   {"en-US": assetLink("a1")},
			"related": {"en-US": []any{entryLink("p2"), entryLink("missing")}},
		},
	}
}

func secondProductEntry() sync.Entry {
	return sync.Entry{
		Sys: sync.Sys{
			ID:          "p2",
			Type:        sync.TypeEntry,
			ContentType: &sync.Link{Sys: sync.LinkSys{Type: "Link", LinkType: "ContentType", ID: "product"}},
		},
		Fields: sync.FieldValues{
			"title": {"en-US": "Streamliner"},
		},
	}
}

func brandEntry() sync.Entry {
	return sync.Entry{
		Sys: sync.Sys{
			ID:          "b1",
			Type:        sync.TypeEntry,
			ContentType: &sync.Link{Sys: sync.LinkSys{Type: "Link", LinkType: "ContentType", ID: "brand"}},
		},
		Fields: sync.FieldValues{
			"name": {"en-US": "Playsam"},
		},
	}
}

func testAsset() sync.Asset {
	return sync.Asset{
		Sys: sync.Sys{ID: "a1", Type: sync.TypeAsset},
		Fields: sync.FieldValues{
			"title": {"en-US": "Espresso photo"},
			"file": {
				"en-US": map[string]any{
					"url":         "//images.test/espresso.jpg",
					"contentType": "image/jpeg",
				},
			},
		},
	}
}

func testSnapshot() sync.Snapshot {
	return sync.Snapshot{
		Entries: []sync.Entry{productEntry(), secondProductEntry(), brandEntry()},
		Assets:  []sync.Asset{testAsset()},
	}
}

func mustBuildIndexes(t *testing.T) (EntryList, *ResolvableSet, FallbackChain) {
	t.Helper()

	entryList := BuildEntryList(testSnapshot(), testContentTypes())
	resolvable, err := BuildResolvableSet(BuildResolvableSetInput{
		ContentTypes: testContentTypes(),
		EntryList:    entryList,
		Assets:       testSnapshot().Assets,
	})
	if err != nil {
		t.Fatalf("build resolvable set: %v", err)
	}
	chain, err := BuildFallbackChain(testLocales())
	if err != nil {
		t.Fatalf("build fallback chain: %v", err)
	}
	return entryList, resolvable, chain
}

// captureWriter records every emitted node, applying an optional namespace
// to exercise the id canonicalization hook.
type captureWriter struct {
	namespace string
	nodes     []*interfaces.Node
}

func (w *captureWriter) CreateNodeID(rawID string) string {
	return w.namespace + rawID
}

func (w *captureWriter) CreateNode(_ context.Context, node *interfaces.Node) error {
	w.nodes = append(w.nodes, node)
	return nil
}

func (w *captureWriter) byID(id string) *interfaces.Node {
	for _, node := range w.nodes {
		if node.ID == id {
			return node
		}
	}
	return nil
}
