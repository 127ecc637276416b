package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// CreateMultiple saves multiple cards to the store. Run this inside
	// a transaction (via WithTx and Transactor.RunInTransaction) so a
	// multi-card note is created atomically.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByIDs retrieves the cards for all given ids. Returns
	// ErrCardNotFound (wrapping the first missing id) if any id does
	// not resolve; batch operations are all-or-nothing.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Card, error)

	// UpdateMultiple persists new scheduling state for the given cards.
	// Returns ErrCardNotFound if any card no longer exists.
	UpdateMultiple(ctx context.Context, cards []*domain.Card) error

	// DeleteMultiple removes the given cards and returns how many rows
	// were deleted. Missing ids are not an error here; the façade
	// validates existence first when the contract requires it.
	DeleteMultiple(ctx context.Context, ids []uuid.UUID) (int64, error)

	// ListByNoteID returns the cards belonging to a note, ordered by
	// template ordinal.
	ListByNoteID(ctx context.Context, noteID uuid.UUID) ([]*domain.Card, error)

	// ListAll returns every card, ordered by (due, id): the range scan
	// the query evaluator walks.
	ListAll(ctx context.Context) ([]*domain.Card, error)

	// NextNewPosition returns the queue position for the next new card
	// (one past the current maximum).
	NextNewPosition(ctx context.Context) (int64, error)

	// WithTx returns a CardStore bound to the given transaction.
	WithTx(tx *sql.Tx) CardStore
}
