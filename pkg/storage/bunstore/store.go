package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/workstory/contentful-source/internal/logging"
	"github.com/workstory/contentful-source/pkg/interfaces"
)

var ErrNodeNotFound = errors.New("bunstore: node not found")

// nodeModel is the persisted shape of an emitted record.
type nodeModel struct {
	bun.BaseModel `bun:"table:source_nodes,alias:sn"`

	ID            string         `bun:"id,pk"`
	ContentfulID  string         `bun:"contentful_id,notnull"`
	SpaceID       string         `bun:"space_id"`
	NodeLocale    string         `bun:"node_locale,notnull"`
	Type          string         `bun:"type,notnull"`
	ContentDigest string         `bun:"content_digest,notnull"`
	Fields        map[string]any `bun:"fields,type:jsonb"`
	SysCreatedAt  string         `bun:"sys_created_at"`
	SysUpdatedAt  string         `bun:"sys_updated_at"`
	StoredAt      time.Time      `bun:"stored_at,nullzero,default:current_timestamp"`
}

// Store is a Bun-backed NodeWriter. It is the reference host-store adapter
// used by integration tests and example wiring; real hosts bring their own
// implementation of the interfaces.NodeWriter boundary.
type Store struct {
	db        *bun.DB
	namespace string
	logger    interfaces.Logger
}

// Option customizes the store.
type Option func(*Store)

// WithNamespace prefixes every canonicalized id, emulating a host that
// remaps synthesized ids into its own namespace.
func WithNamespace(namespace string) Option {
	return func(s *Store) {
		s.namespace = namespace
	}
}

// WithLogger attaches a logger for write diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoggerProvider scopes write diagnostics to the store logger namespace
// of the given provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *Store) {
		s.logger = logging.StoreLogger(provider)
	}
}

// New constructs a store over the given Bun database.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{db: db, logger: logging.StoreLogger(nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the backing table when it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	if s.db == nil {
		return errors.New("bunstore: store requires a database")
	}
	_, err := s.db.NewCreateTable().Model((*nodeModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// CreateNodeID satisfies interfaces.NodeWriter by mapping a synthesized id
// into the store namespace. Same input always yields the same id.
func (s *Store) CreateNodeID(rawID string) string {
	if s.namespace == "" {
		return rawID
	}
	return s.namespace + ":" + rawID
}

// CreateNode upserts one emitted record. Re-running a pipeline over the
// same snapshot overwrites each row with identical content, keeping the
// store idempotent per (entity, locale).
func (s *Store) CreateNode(ctx context.Context, node *interfaces.Node) error {
	if s.db == nil {
		return errors.New("bunstore: store requires a database")
	}
	if node == nil || node.ID == "" {
		return errors.New("bunstore: node requires an id")
	}

	model := nodeModel{
		ID:            node.ID,
		ContentfulID:  node.ContentfulID,
		SpaceID:       node.SpaceID,
		NodeLocale:    node.NodeLocale,
		Type:          node.Internal.Type,
		ContentDigest: node.Internal.ContentDigest,
		Fields:        node.Fields,
		SysCreatedAt:  node.CreatedAt,
		SysUpdatedAt:  node.UpdatedAt,
		StoredAt:      time.Now().UTC(),
	}

	_, err := s.db.NewInsert().
		Model(&model).
		On("CONFLICT (id) DO UPDATE").
		Set("contentful_id = EXCLUDED.contentful_id").
		Set("space_id = EXCLUDED.space_id").
		Set("node_locale = EXCLUDED.node_locale").
		Set("type = EXCLUDED.type").
		Set("content_digest = EXCLUDED.content_digest").
		Set("fields = EXCLUDED.fields").
		Set("sys_created_at = EXCLUDED.sys_created_at").
		Set("sys_updated_at = EXCLUDED.sys_updated_at").
		Set("stored_at = EXCLUDED.stored_at").
		Exec(ctx)
	if err != nil {
		return err
	}

	s.logger.Debug("stored node", "id", node.ID, "type", node.Internal.Type, "locale", node.NodeLocale)
	return nil
}

// Get loads one stored record by its canonicalized id.
func (s *Store) Get(ctx context.Context, id string) (*interfaces.Node, error) {
	var model nodeModel
	if err := s.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNodeNotFound
		}
		return nil, err
	}
	return modelToNode(&model), nil
}

// ListByType returns every stored record of one host type, ordered by id.
func (s *Store) ListByType(ctx context.Context, nodeType string) ([]*interfaces.Node, error) {
	var models []nodeModel
	err := s.db.NewSelect().
		Model(&models).
		Where("type = ?", nodeType).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]*interfaces.Node, 0, len(models))
	for i := range models {
		nodes = append(nodes, modelToNode(&models[i]))
	}
	return nodes, nil
}

func modelToNode(model *nodeModel) *interfaces.Node {
	return &interfaces.Node{
		ID:           model.ID,
		ContentfulID: model.ContentfulID,
		SpaceID:      model.SpaceID,
		NodeLocale:   model.NodeLocale,
		CreatedAt:    model.SysCreatedAt,
		UpdatedAt:    model.SysUpdatedAt,
		Fields:       model.Fields,
		Internal: interfaces.NodeInternal{
			Type:          model.Type,
			ContentDigest: model.ContentDigest,
		},
	}
}
