package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/platform/logger"
	"github.com/rotekit/rote/internal/store"
)

// PostgresNoteStore implements the store.NoteStore interface using a
// PostgreSQL database as the storage backend. Field values and tags are
// stored as JSONB.
type PostgresNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNoteStore creates a new PostgreSQL implementation of the
// NoteStore interface.
func NewPostgresNoteStore(db store.DBTX, log *slog.Logger) *PostgresNoteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresNoteStore{
		db:     db,
		logger: log.With(slog.String("component", "note_store")),
	}
}

// Ensure PostgresNoteStore implements store.NoteStore
var _ store.NoteStore = (*PostgresNoteStore)(nil)

// WithTx implements store.NoteStore.WithTx
func (s *PostgresNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &PostgresNoteStore{db: tx, logger: s.logger}
}

// Create implements store.NoteStore.Create
func (s *PostgresNoteStore) Create(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	fields, tags, err := marshalNote(note)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notes (id, notetype_id, fields, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		note.ID, note.NotetypeID, fields, tags, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			return fmt.Errorf("%w: notetype %s not found",
				store.ErrInvalidEntity, note.NotetypeID)
		}
		log.Error("failed to create note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}
	return nil
}

// GetByID implements store.NoteStore.GetByID
func (s *PostgresNoteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	query := `
		SELECT id, notetype_id, fields, tags, created_at, updated_at
		FROM notes
		WHERE id = $1
	`
	note, err := scanNote(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrNoteNotFound, id)
		}
		return nil, err
	}
	return note, nil
}

// Update implements store.NoteStore.Update
func (s *PostgresNoteStore) Update(ctx context.Context, note *domain.Note) error {
	if err := note.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	fields, tags, err := marshalNote(note)
	if err != nil {
		return err
	}

	query := `
		UPDATE notes
		SET fields = $2, tags = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, note.ID, fields, tags, note.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNoteNotFound, note.ID)
	}
	return nil
}

// Delete implements store.NoteStore.Delete
func (s *PostgresNoteStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNoteNotFound, id)
	}
	return nil
}

// DeleteOrphaned implements store.NoteStore.DeleteOrphaned
func (s *PostgresNoteStore) DeleteOrphaned(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders, args := idPlaceholders(ids)
	query := `
		DELETE FROM notes
		WHERE id IN (` + placeholders + `)
		AND NOT EXISTS (SELECT 1 FROM cards WHERE cards.note_id = notes.id)
	`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListAll implements store.NoteStore.ListAll
func (s *PostgresNoteStore) ListAll(ctx context.Context) (map[uuid.UUID]*domain.Note, error) {
	query := `SELECT id, notetype_id, fields, tags, created_at, updated_at FROM notes`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notes := make(map[uuid.UUID]*domain.Note)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes[note.ID] = note
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

func marshalNote(note *domain.Note) (fields, tags []byte, err error) {
	fields, err = json.Marshal(note.Fields)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal note fields: %w", err)
	}
	tags, err = json.Marshal(note.Tags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal note tags: %w", err)
	}
	return fields, tags, nil
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var note domain.Note
	var fields, tags []byte
	err := row.Scan(&note.ID, &note.NotetypeID, &fields, &tags,
		&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &note.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal note fields: %w", err)
	}
	if err := json.Unmarshal(tags, &note.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal note tags: %w", err)
	}
	return &note, nil
}
