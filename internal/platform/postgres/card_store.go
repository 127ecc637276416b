package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/platform/logger"
	"github.com/rotekit/rote/internal/store"
)

// PostgreSQL error codes
const (
	pgForeignKeyViolationCode = "23503"
	pgUniqueViolationCode     = "23505"
)

const cardColumns = `id, note_id, deck_id, template_ord, state, due, step, interval,
	ease_factor, lapses, reps, suspended, buried, flag, created_at, updated_at`

// PostgresCardStore implements the store.CardStore interface using a
// PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. The db handle (connection or transaction) is
// managed by the caller. If logger is nil, the default logger is used.
func NewPostgresCardStore(db store.DBTX, log *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresCardStore{
		db:     db,
		logger: log.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

// CreateMultiple implements store.CardStore.CreateMultiple
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		_, err := s.db.ExecContext(ctx, query,
			card.ID, card.NoteID, card.DeckID, card.TemplateOrd, card.State,
			card.Due, card.Step, card.Interval, card.EaseFactor, card.Lapses,
			card.Reps, card.Suspended, card.Buried, card.Flag,
			card.CreatedAt, card.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
				return fmt.Errorf("%w: card %s references a missing note or deck",
					store.ErrInvalidEntity, card.ID)
			}
			log.Error("failed to create card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}
	}

	log.Debug("cards created", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrCardNotFound, id)
		}
		return nil, err
	}
	return card, nil
}

// GetByIDs implements store.CardStore.GetByIDs
func (s *PostgresCardStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders, args := idPlaceholders(ids)
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id IN (` + placeholders + `) ORDER BY due, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	found := make(map[uuid.UUID]*domain.Card, len(ids))
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		found[card.ID] = card
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Batches are all-or-nothing: any unresolved id fails the lot,
	// naming the first missing one.
	cards := make([]*domain.Card, 0, len(ids))
	for _, id := range ids {
		card, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", store.ErrCardNotFound, id)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// UpdateMultiple implements store.CardStore.UpdateMultiple
func (s *PostgresCardStore) UpdateMultiple(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE cards
		SET note_id = $2, deck_id = $3, template_ord = $4, state = $5, due = $6,
			step = $7, interval = $8, ease_factor = $9, lapses = $10, reps = $11,
			suspended = $12, buried = $13, flag = $14, updated_at = $15
		WHERE id = $1
	`
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		res, err := s.db.ExecContext(ctx, query,
			card.ID, card.NoteID, card.DeckID, card.TemplateOrd, card.State,
			card.Due, card.Step, card.Interval, card.EaseFactor, card.Lapses,
			card.Reps, card.Suspended, card.Buried, card.Flag, card.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to update card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", store.ErrCardNotFound, card.ID)
		}
	}
	return nil
}

// DeleteMultiple implements store.CardStore.DeleteMultiple
func (s *PostgresCardStore) DeleteMultiple(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders, args := idPlaceholders(ids)
	query := `DELETE FROM cards WHERE id IN (` + placeholders + `)`

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByNoteID implements store.CardStore.ListByNoteID
func (s *PostgresCardStore) ListByNoteID(ctx context.Context, noteID uuid.UUID) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE note_id = $1 ORDER BY template_ord`
	return s.queryCards(ctx, query, noteID)
}

// ListAll implements store.CardStore.ListAll
func (s *PostgresCardStore) ListAll(ctx context.Context) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY due, id`
	return s.queryCards(ctx, query)
}

// NextNewPosition implements store.CardStore.NextNewPosition
func (s *PostgresCardStore) NextNewPosition(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(due) + 1, 0) FROM cards WHERE state = 'new'`

	var pos int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&pos); err != nil {
		return 0, err
	}
	return pos, nil
}

func (s *PostgresCardStore) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var state string
	err := row.Scan(
		&card.ID, &card.NoteID, &card.DeckID, &card.TemplateOrd, &state,
		&card.Due, &card.Step, &card.Interval, &card.EaseFactor, &card.Lapses,
		&card.Reps, &card.Suspended, &card.Buried, &card.Flag,
		&card.CreatedAt, &card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	card.State = domain.CardState(state)
	return &card, nil
}

// idPlaceholders builds "$1, $2, …" and the matching args slice for an
// id list.
func idPlaceholders(ids []uuid.UUID) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}
