package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
)

// NoteStore defines the interface for note data persistence.
type NoteStore interface {
	// Create saves a new note.
	Create(ctx context.Context, note *domain.Note) error

	// GetByID retrieves a note by its unique ID.
	// Returns ErrNoteNotFound if the note does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error)

	// Update persists changed field values and tags.
	// Returns ErrNoteNotFound if the note does not exist.
	Update(ctx context.Context, note *domain.Note) error

	// Delete removes a note. Its cards go with it via the schema's
	// cascade delete.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteOrphaned removes the notes among the given ids that no
	// longer have any cards, and returns how many were removed. Called
	// after card deletion so a note never outlives its last card.
	DeleteOrphaned(ctx context.Context, ids []uuid.UUID) (int64, error)

	// ListAll returns every note keyed by id, for snapshot loads.
	ListAll(ctx context.Context) (map[uuid.UUID]*domain.Note, error)

	// WithTx returns a NoteStore bound to the given transaction.
	WithTx(tx *sql.Tx) NoteStore
}
