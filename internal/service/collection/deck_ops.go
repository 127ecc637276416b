package collection

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/platform/logger"
	"github.com/rotekit/rote/internal/store"
)

// GetDeck retrieves a deck by id.
func (s *Service) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	return s.decks.GetByID(ctx, id)
}

// GetDeckByName retrieves a deck by its full path name,
// case-insensitively. Unknown names are a not-found error, never an
// implicit create.
func (s *Service) GetDeckByName(ctx context.Context, name string) (*domain.Deck, error) {
	return s.decks.GetByName(ctx, name)
}

// ListDecks returns all decks keyed by id.
func (s *Service) ListDecks(ctx context.Context) (map[uuid.UUID]*domain.Deck, error) {
	return s.decks.ListAll(ctx)
}

// CreateDeck creates a deck with the given full `::`-separated path
// name, creating any missing ancestor decks so the tree stays rooted.
// Returns the deck for the full name.
func (s *Service) CreateDeck(ctx context.Context, name string, now time.Time) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var created *domain.Deck
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		segments := strings.Split(name, domain.DeckNameSeparator)
		path := ""
		for _, segment := range segments {
			if path == "" {
				path = segment
			} else {
				path = path + domain.DeckNameSeparator + segment
			}

			deck, err := st.decks.GetByName(ctx, path)
			if err == nil {
				created = deck
				continue
			}
			if !errors.Is(err, store.ErrDeckNotFound) {
				return err
			}

			deck, err = domain.NewDeck(path)
			if err != nil {
				return err
			}
			deck.CreatedAt = now.UTC()
			deck.UpdatedAt = now.UTC()
			if err := st.decks.Create(ctx, deck); err != nil {
				return err
			}
			created = deck
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("deck created", slog.String("deck_name", created.Name))
	return created, nil
}

// DeleteDeck removes a deck and, by policy, its whole subtree: child
// decks, their cards, and any notes orphaned by those cards. Cascade
// (rather than reparenting children) keeps the operation a single
// unambiguous transaction.
func (s *Service) DeleteDeck(ctx context.Context, id uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var removed int64
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		deck, err := st.decks.GetByID(ctx, id)
		if err != nil {
			return err
		}

		all, err := st.decks.ListAll(ctx)
		if err != nil {
			return err
		}
		doomed := []uuid.UUID{deck.ID}
		for otherID, other := range all {
			if deck.IsAncestorOf(other.Name) {
				doomed = append(doomed, otherID)
			}
		}

		// Deck deletion cascades to cards at the schema level; collect
		// the affected notes first so orphans can be cleaned up after.
		cards, err := st.cards.ListAll(ctx)
		if err != nil {
			return err
		}
		doomedSet := make(map[uuid.UUID]struct{}, len(doomed))
		for _, d := range doomed {
			doomedSet[d] = struct{}{}
		}
		var noteIDs []uuid.UUID
		noteSeen := make(map[uuid.UUID]struct{})
		for _, card := range cards {
			if _, ok := doomedSet[card.DeckID]; !ok {
				continue
			}
			if _, ok := noteSeen[card.NoteID]; ok {
				continue
			}
			noteSeen[card.NoteID] = struct{}{}
			noteIDs = append(noteIDs, card.NoteID)
		}

		if err := st.decks.Delete(ctx, doomed); err != nil {
			return err
		}
		if _, err := st.notes.DeleteOrphaned(ctx, noteIDs); err != nil {
			return err
		}
		removed = int64(len(doomed))
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info("deck subtree deleted", slog.Int64("decks_removed", removed))
	return removed, nil
}
