package contentfulsource

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/workstory/contentful-source/pkg/interfaces"
	"github.com/workstory/contentful-source/sync"
)

type memoryWriter struct {
	nodes []*interfaces.Node
}

func (w *memoryWriter) CreateNodeID(rawID string) string { return rawID }

func (w *memoryWriter) CreateNode(_ context.Context, node *interfaces.Node) error {
	w.nodes = append(w.nodes, node)
	return nil
}

func (w *memoryWriter) byID(id string) *interfaces.Node {
	for _, node := range w.nodes {
		if node.ID == id {
			return node
		}
	}
	return nil
}

func testInput() ProcessInput {
	contentTypeLink := func(id string) *sync.Link {
		return &sync.Link{Sys: sync.LinkSys{Type: "Link", LinkType: "ContentType", ID: id}}
	}

	post := sync.Entry{
		Sys: sync.Sys{ID: "post1", Type: sync.TypeEntry, ContentType: contentTypeLink("post")},
		Fields: sync.FieldValues{
			"title": {
				"en-US": "Hello world",
				"de":    "Hallo Welt",
			},
			"author": {
				"en-US": map[string]any{
					"sys": map[string]any{"type": "Link", "linkType": "Entry", "id": "author1"},
				},
			},
		},
	}
	author := sync.Entry{
		Sys: sync.Sys{ID: "author1", Type: sync.TypeEntry, ContentType: contentTypeLink("author")},
		Fields: sync.FieldValues{
			"name": {"en-US": "Ada"},
		},
	}

	return ProcessInput{
		SpaceID: "space",
		Pages:   []sync.Page{{Entries: []sync.Entry{post, author}}},
		ContentTypes: []sync.ContentType{
			{
				Sys:  sync.Sys{ID: "post", Type: "ContentType"},
				Name: "Post",
				Fields: []sync.FieldDefinition{
					{ID: "title", Type: sync.FieldTypeSymbol},
					{ID: "author", Type: sync.FieldTypeLink, LinkType: sync.TypeEntry},
				},
			},
			{
				Sys:  sync.Sys{ID: "author", Type: "ContentType"},
				Name: "Author",
				Fields: []sync.FieldDefinition{
					{ID: "name", Type: sync.FieldTypeSymbol},
				},
			},
		},
		Locales: []sync.Locale{
			{Code: "en-US", Default: true},
			{Code: "de", FallbackCode: "en-US"},
		},
	}
}

func newTestSource(t *testing.T, writer interfaces.NodeWriter) *Source {
	t.Helper()
	source, err := New(DefaultConfig(), WithNodeWriter(writer))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	return source
}

func TestProcessEmitsOneNodePerEntryAndLocale(t *testing.T) {
	writer := &memoryWriter{}
	source := newTestSource(t, writer)

	result, err := source.Process(context.Background(), testInput())
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.EntryNodes != 4 {
		t.Fatalf("expected 4 entry nodes (2 entries x 2 locales), got %d", result.EntryNodes)
	}
	if result.AssetNodes != 0 {
		t.Fatalf("expected no asset nodes, got %d", result.AssetNodes)
	}
	if len(result.Snapshot.Entries) != 2 {
		t.Fatalf("expected 2 merged entries, got %d", len(result.Snapshot.Entries))
	}
}

func TestProcessResolvesLinksAcrossLocales(t *testing.T) {
	writer := &memoryWriter{}
	source := newTestSource(t, writer)

	if _, err := source.Process(context.Background(), testInput()); err != nil {
		t.Fatalf("process: %v", err)
	}

	// The unlocalized link field on the de variant points at the target's
	// default-locale (canonical) id.
	dePost := writer.byID("space___post1___Post___de")
	if dePost == nil {
		t.Fatalf("missing de post node")
	}
	if got := dePost.Fields["author___NODE"]; got != "space___author1___Author" {
		t.Fatalf("expected canonical author id, got %v", got)
	}
	if got := dePost.Fields["title"]; got != "Hallo Welt" {
		t.Fatalf("expected localized title, got %v", got)
	}

	author := writer.byID("space___author1___Author")
	if author == nil {
		t.Fatalf("missing author node")
	}
	linkedFrom, ok := author.Fields["post___NODE"].([]string)
	if !ok || len(linkedFrom) != 1 || linkedFrom[0] != "space___post1___Post" {
		t.Fatalf("expected back reference from post1, got %v", author.Fields["post___NODE"])
	}

	// The author has no de name; the de node falls back to en-US.
	deAuthor := writer.byID("space___author1___Author___de")
	if deAuthor == nil {
		t.Fatalf("missing de author node")
	}
	if got := deAuthor.Fields["name"]; got != "Ada" {
		t.Fatalf("expected en-US fallback for name, got %v", got)
	}
}

func TestProcessHonorsSyncDeletions(t *testing.T) {
	writer := &memoryWriter{}
	source := newTestSource(t, writer)

	input := testInput()
	input.Pages = append(input.Pages, sync.Page{
		DeletedEntries: []sync.DeletedItem{{Sys: sync.Sys{ID: "post1"}}},
	})

	result, err := source.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.EntryNodes != 2 {
		t.Fatalf("expected only the author nodes to survive, got %d", result.EntryNodes)
	}
	if writer.byID("space___post1___Post") != nil {
		t.Fatalf("deleted entry must not be materialized")
	}
	// The dangling link target disappeared, so no back reference remains.
	author := writer.byID("space___author1___Author")
	if _, exists := author.Fields["post___NODE"]; exists {
		t.Fatalf("back reference to a deleted entry must not survive")
	}
}

func TestProcessRejectsInvalidInput(t *testing.T) {
	source := newTestSource(t, &memoryWriter{})

	t.Run("missing space id", func(t *testing.T) {
		input := testInput()
		input.SpaceID = ""
		_, err := source.Process(context.Background(), input)
		if err == nil || !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("cyclic locale fallback", func(t *testing.T) {
		input := testInput()
		input.Locales = []sync.Locale{
			{Code: "en-US", Default: true},
			{Code: "de", FallbackCode: "gsw"},
			{Code: "gsw", FallbackCode: "de"},
		}
		_, err := source.Process(context.Background(), input)
		if !errors.Is(err, ErrLocaleFallbackCycle) {
			t.Fatalf("expected ErrLocaleFallbackCycle, got %v", err)
		}
	})

	t.Run("missing default locale", func(t *testing.T) {
		input := testInput()
		input.Locales = []sync.Locale{{Code: "en-US"}}
		_, err := source.Process(context.Background(), input)
		if !errors.Is(err, ErrDefaultLocaleRequired) {
			t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
		}
	})
}

func TestNewRequiresNodeWriter(t *testing.T) {
	if _, err := New(DefaultConfig()); !errors.Is(err, ErrNodeWriterRequired) {
		t.Fatalf("expected ErrNodeWriterRequired, got %v", err)
	}
}

func TestNewBuildsProviderFromLoggingConfig(t *testing.T) {
	t.Run("config reaches the provider", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Format = "xml"
		_, err := New(cfg, WithNodeWriter(&memoryWriter{}))
		if err == nil || !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected the provider to reject the format, got %v", err)
		}
	})

	t.Run("env reaches the provider", func(t *testing.T) {
		t.Setenv("CONTENTFUL_SOURCE_LOG_FORMAT", "xml")
		cfg, err := ConfigFromEnv()
		if err != nil {
			t.Fatalf("config from env: %v", err)
		}
		if _, err := New(cfg, WithNodeWriter(&memoryWriter{})); err == nil {
			t.Fatalf("expected the env-configured format to reach the provider")
		}
	})

	t.Run("console format accepted", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
		source, err := New(cfg, WithNodeWriter(&memoryWriter{}))
		if err != nil {
			t.Fatalf("new source: %v", err)
		}
		if _, err := source.Process(context.Background(), testInput()); err != nil {
			t.Fatalf("process: %v", err)
		}
	})
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Trace(msg string, _ ...any) { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Debug(msg string, _ ...any) { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any) { l.messages = append(l.messages, msg) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) has(msg string) bool {
	for _, recorded := range l.messages {
		if recorded == msg {
			return true
		}
	}
	return false
}

func TestProcessLogsEveryStage(t *testing.T) {
	logger := &recordingLogger{}
	source, err := New(DefaultConfig(), WithNodeWriter(&memoryWriter{}), WithLogger(logger))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	if _, err := source.Process(context.Background(), testInput()); err != nil {
		t.Fatalf("process: %v", err)
	}

	for _, msg := range []string{"merged sync pages", "built foreign reference map", "normalized sync snapshot"} {
		if !logger.has(msg) {
			t.Fatalf("expected %q to be logged, got %v", msg, logger.messages)
		}
	}
}
