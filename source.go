// Package contentfulsource normalizes a Contentful space's incremental sync
// export into flat records for a host data layer. The pipeline is pure and
// synchronous; I/O stays behind the injected NodeWriter boundary.
package contentfulsource

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/workstory/contentful-source/internal/logging"
	"github.com/workstory/contentful-source/internal/logging/gologger"
	"github.com/workstory/contentful-source/normalize"
	"github.com/workstory/contentful-source/pkg/interfaces"
	"github.com/workstory/contentful-source/sync"
)

// Source folds Contentful sync deltas into a consistent snapshot and
// materializes one flat, locale-resolved node per entity and locale into
// the injected node writer.
type Source struct {
	cfg      Config
	provider interfaces.LoggerProvider
	logger   interfaces.Logger
	syncLog  interfaces.Logger
	normLog  interfaces.Logger
	writer   interfaces.NodeWriter
}

// Option customizes a Source beyond its configuration.
type Option func(*Source)

// WithNodeWriter injects the host store boundary. A writer is mandatory;
// New fails without one.
func WithNodeWriter(writer interfaces.NodeWriter) Option {
	return func(s *Source) {
		s.writer = writer
	}
}

// WithLoggerProvider wires stage-scoped loggers from the given provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *Source) {
		s.provider = provider
	}
}

// WithLogger sets one logger for every stage. Mostly useful in tests.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New validates the configuration and assembles a Source. Without an
// explicit logger or provider option, the go-logger provider configured by
// cfg.Logging backs the stage loggers.
func New(cfg Config, opts ...Option) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, wrapConfigurationError(err)
	}

	s := &Source{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.writer == nil {
		return nil, wrapConfigurationError(normalize.ErrNodeWriterRequired)
	}

	if s.logger != nil {
		s.syncLog = s.logger
		s.normLog = s.logger
		return s, nil
	}

	if s.provider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, wrapConfigurationError(err)
		}
		s.provider = provider
	}
	s.logger = logging.ModuleLogger(s.provider, "")
	s.syncLog = logging.SyncLogger(s.provider)
	s.normLog = logging.NormalizeLogger(s.provider)
	return s, nil
}

// ProcessInput is the input boundary fed by the sync client: the ordered
// delta pages of one sync run plus the space's schema and locale metadata.
type ProcessInput struct {
	SpaceID      string
	Pages        []sync.Page
	ContentTypes []sync.ContentType
	Locales      []sync.Locale
}

// Validate checks the boundary shape before normalization starts.
func (in ProcessInput) Validate() error {
	errs := validation.Errors{}
	if in.SpaceID == "" {
		errs["space_id"] = validation.NewError("contentful.process.space_id_required", "space id is required")
	}
	if len(in.Locales) == 0 {
		errs["locales"] = validation.NewError("contentful.process.locales_required", "at least one locale is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Result summarizes one pipeline run.
type Result struct {
	Snapshot   sync.Snapshot
	EntryNodes int
	AssetNodes int
}

// Process runs the full normalization pipeline over one already-fetched
// sync delta set: merge pages, group entries, index resolvable targets,
// invert references, then emit nodes. The run is synchronous and
// deterministic; every intermediate structure is built once and treated as
// read-only by later stages.
func (s *Source) Process(ctx context.Context, in ProcessInput) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, wrapConfigurationError(err)
	}

	defaultLocale, err := normalize.DefaultLocale(in.Locales)
	if err != nil {
		return nil, wrapConfigurationError(err)
	}
	chain, err := normalize.BuildFallbackChain(in.Locales)
	if err != nil {
		return nil, wrapConfigurationError(err)
	}

	snapshot := sync.Merge(in.Pages)
	s.syncLog.Debug("merged sync pages",
		"pages", len(in.Pages),
		"entries", len(snapshot.Entries),
		"assets", len(snapshot.Assets),
		"deleted_entries", len(snapshot.DeletedEntryIDs),
		"deleted_assets", len(snapshot.DeletedAssetIDs),
	)

	entryList := normalize.BuildEntryList(snapshot, in.ContentTypes)
	resolvable, err := normalize.BuildResolvableSet(normalize.BuildResolvableSetInput{
		ContentTypes: in.ContentTypes,
		EntryList:    entryList,
		Assets:       snapshot.Assets,
	})
	if err != nil {
		return nil, wrapPipelineError(err)
	}

	refs := normalize.BuildForeignReferenceMap(normalize.BuildForeignReferenceMapInput{
		ContentTypes:  in.ContentTypes,
		EntryList:     entryList,
		Resolvable:    resolvable,
		Locales:       in.Locales,
		DefaultLocale: defaultLocale.Code,
		SpaceID:       in.SpaceID,
		IDMode:        s.cfg.IDMode,
	})
	s.normLog.Debug("built foreign reference map", "targets", len(refs))

	writer := &countingWriter{NodeWriter: s.writer}

	for i, contentType := range in.ContentTypes {
		var entries []sync.Entry
		if i < len(entryList) {
			entries = entryList[i]
		}
		err := normalize.CreateNodesForContentType(ctx, normalize.CreateNodesInput{
			ContentType:    contentType,
			Entries:        entries,
			Resolvable:     resolvable,
			ForeignRefs:    refs,
			Fallbacks:      chain,
			Locales:        in.Locales,
			DefaultLocale:  defaultLocale.Code,
			SpaceID:        in.SpaceID,
			IDMode:         s.cfg.IDMode,
			ConflictPrefix: s.cfg.ConflictPrefix,
			Writer:         writer,
		})
		if err != nil {
			return nil, wrapPipelineError(err)
		}
	}
	entryNodes := writer.count

	for _, asset := range snapshot.Assets {
		err := normalize.CreateAssetNodes(ctx, normalize.CreateAssetNodesInput{
			Asset:         asset,
			Fallbacks:     chain,
			Locales:       in.Locales,
			DefaultLocale: defaultLocale.Code,
			SpaceID:       in.SpaceID,
			Writer:        writer,
		})
		if err != nil {
			return nil, wrapPipelineError(err)
		}
	}
	assetNodes := writer.count - entryNodes

	s.normLog.Info("normalized sync snapshot",
		"space", in.SpaceID,
		"entry_nodes", entryNodes,
		"asset_nodes", assetNodes,
		"locales", len(in.Locales),
	)

	return &Result{
		Snapshot:   snapshot,
		EntryNodes: entryNodes,
		AssetNodes: assetNodes,
	}, nil
}

// countingWriter tallies emitted nodes while delegating to the host writer.
type countingWriter struct {
	interfaces.NodeWriter
	count int
}

func (w *countingWriter) CreateNode(ctx context.Context, node *interfaces.Node) error {
	if err := w.NodeWriter.CreateNode(ctx, node); err != nil {
		return err
	}
	w.count++
	return nil
}
