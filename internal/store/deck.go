package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
)

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// Create saves a new deck. Returns ErrDeckNameExists if a deck with
	// the same full path name already exists (case-insensitive).
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// GetByName retrieves a deck by its full path name, matching
	// case-insensitively. Returns ErrDeckNotFound if no such deck
	// exists. Unknown names are never auto-created.
	GetByName(ctx context.Context, name string) (*domain.Deck, error)

	// Update persists a changed deck (name or config).
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes the decks with the given ids. Cards in them go via
	// the schema's cascade delete; the caller resolves the subtree and
	// orphaned notes.
	Delete(ctx context.Context, ids []uuid.UUID) error

	// ListAll returns every deck keyed by id.
	ListAll(ctx context.Context) (map[uuid.UUID]*domain.Deck, error)

	// WithTx returns a DeckStore bound to the given transaction.
	WithTx(tx *sql.Tx) DeckStore
}

// NotetypeStore defines the interface for notetype persistence.
type NotetypeStore interface {
	// Create saves a new notetype.
	Create(ctx context.Context, notetype *domain.Notetype) error

	// GetByID retrieves a notetype by its unique ID.
	// Returns ErrNotetypeNotFound if the notetype does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notetype, error)

	// GetByName retrieves a notetype by name, matching case-insensitively.
	// Returns ErrNotetypeNotFound if no such notetype exists.
	GetByName(ctx context.Context, name string) (*domain.Notetype, error)

	// ListAll returns every notetype keyed by id.
	ListAll(ctx context.Context) (map[uuid.UUID]*domain.Notetype, error)

	// WithTx returns a NotetypeStore bound to the given transaction.
	WithTx(tx *sql.Tx) NotetypeStore
}
