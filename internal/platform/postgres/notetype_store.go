package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/store"
)

// PostgresNotetypeStore implements the store.NotetypeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotetypeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotetypeStore creates a new PostgreSQL implementation of
// the NotetypeStore interface.
func NewPostgresNotetypeStore(db store.DBTX, log *slog.Logger) *PostgresNotetypeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresNotetypeStore{
		db:     db,
		logger: log.With(slog.String("component", "notetype_store")),
	}
}

// Ensure PostgresNotetypeStore implements store.NotetypeStore
var _ store.NotetypeStore = (*PostgresNotetypeStore)(nil)

// WithTx implements store.NotetypeStore.WithTx
func (s *PostgresNotetypeStore) WithTx(tx *sql.Tx) store.NotetypeStore {
	return &PostgresNotetypeStore{db: tx, logger: s.logger}
}

// Create implements store.NotetypeStore.Create
func (s *PostgresNotetypeStore) Create(ctx context.Context, nt *domain.Notetype) error {
	if err := nt.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	fields, err := json.Marshal(nt.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal notetype fields: %w", err)
	}
	templates, err := json.Marshal(nt.Templates)
	if err != nil {
		return fmt.Errorf("failed to marshal notetype templates: %w", err)
	}

	query := `
		INSERT INTO notetypes (id, name, fields, templates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		nt.ID, nt.Name, fields, templates, nt.CreatedAt, nt.UpdatedAt)
	return err
}

// GetByID implements store.NotetypeStore.GetByID
func (s *PostgresNotetypeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notetype, error) {
	query := `SELECT id, name, fields, templates, created_at, updated_at FROM notetypes WHERE id = $1`

	nt, err := scanNotetype(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotetypeNotFound, id)
		}
		return nil, err
	}
	return nt, nil
}

// GetByName implements store.NotetypeStore.GetByName
func (s *PostgresNotetypeStore) GetByName(ctx context.Context, name string) (*domain.Notetype, error) {
	query := `SELECT id, name, fields, templates, created_at, updated_at FROM notetypes WHERE LOWER(name) = LOWER($1)`

	nt, err := scanNotetype(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", store.ErrNotetypeNotFound, name)
		}
		return nil, err
	}
	return nt, nil
}

// ListAll implements store.NotetypeStore.ListAll
func (s *PostgresNotetypeStore) ListAll(ctx context.Context) (map[uuid.UUID]*domain.Notetype, error) {
	query := `SELECT id, name, fields, templates, created_at, updated_at FROM notetypes`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notetypes := make(map[uuid.UUID]*domain.Notetype)
	for rows.Next() {
		nt, err := scanNotetype(rows)
		if err != nil {
			return nil, err
		}
		notetypes[nt.ID] = nt
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notetypes, nil
}

func scanNotetype(row rowScanner) (*domain.Notetype, error) {
	var nt domain.Notetype
	var fields, templates []byte
	err := row.Scan(&nt.ID, &nt.Name, &fields, &templates, &nt.CreatedAt, &nt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &nt.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notetype fields: %w", err)
	}
	if err := json.Unmarshal(templates, &nt.Templates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notetype templates: %w", err)
	}
	return &nt, nil
}
