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

// PostgresDeckStore implements the store.DeckStore interface using a
// PostgreSQL database as the storage backend. The deck's scheduling
// config is stored as JSONB.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the
// DeckStore interface.
func NewPostgresDeckStore(db store.DBTX, log *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresDeckStore{
		db:     db,
		logger: log.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger}
}

// Create implements store.DeckStore.Create
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	config, err := json.Marshal(deck.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal deck config: %w", err)
	}

	query := `
		INSERT INTO decks (id, name, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.db.ExecContext(ctx, query,
		deck.ID, deck.Name, config, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return fmt.Errorf("%w: %q", store.ErrDeckNameExists, deck.Name)
		}
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_name", deck.Name))
		return err
	}

	log.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("deck_name", deck.Name))
	return nil
}

// GetByID implements store.DeckStore.GetByID
func (s *PostgresDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	query := `SELECT id, name, config, created_at, updated_at FROM decks WHERE id = $1`

	deck, err := scanDeck(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrDeckNotFound, id)
		}
		return nil, err
	}
	return deck, nil
}

// GetByName implements store.DeckStore.GetByName
func (s *PostgresDeckStore) GetByName(ctx context.Context, name string) (*domain.Deck, error) {
	query := `SELECT id, name, config, created_at, updated_at FROM decks WHERE LOWER(name) = LOWER($1)`

	deck, err := scanDeck(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", store.ErrDeckNotFound, name)
		}
		return nil, err
	}
	return deck, nil
}

// Update implements store.DeckStore.Update
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	config, err := json.Marshal(deck.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal deck config: %w", err)
	}

	query := `UPDATE decks SET name = $2, config = $3, updated_at = $4 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, deck.ID, deck.Name, config, deck.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrDeckNotFound, deck.ID)
	}
	return nil
}

// Delete implements store.DeckStore.Delete
func (s *PostgresDeckStore) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders, args := idPlaceholders(ids)
	_, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id IN (`+placeholders+`)`, args...)
	return err
}

// ListAll implements store.DeckStore.ListAll
func (s *PostgresDeckStore) ListAll(ctx context.Context) (map[uuid.UUID]*domain.Deck, error) {
	query := `SELECT id, name, config, created_at, updated_at FROM decks`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	decks := make(map[uuid.UUID]*domain.Deck)
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks[deck.ID] = deck
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decks, nil
}

func scanDeck(row rowScanner) (*domain.Deck, error) {
	var deck domain.Deck
	var config []byte
	err := row.Scan(&deck.ID, &deck.Name, &config, &deck.CreatedAt, &deck.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(config, &deck.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deck config: %w", err)
	}
	return &deck, nil
}
