package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/platform/logger"
	"github.com/rotekit/rote/internal/srs"
	"github.com/rotekit/rote/internal/store"
)

// GetCard retrieves a card by id.
// Returns store.ErrCardNotFound if it does not exist.
func (s *Service) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.cards.GetByID(ctx, id)
}

// AnswerCard submits a rating for one card and persists the scheduler's
// next state. Answering a suspended or buried card fails with
// ErrInvalidState; an unknown rating fails with ErrInvalidArgument.
func (s *Service) AnswerCard(
	ctx context.Context,
	id uuid.UUID,
	rating srs.Rating,
	now time.Time,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !rating.Valid() {
		return nil, fmt.Errorf("%w: rating %q", ErrInvalidArgument, rating)
	}

	var updated *domain.Card
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		card, err := st.cards.GetByID(ctx, id)
		if err != nil {
			return err
		}
		deck, err := st.decks.GetByID(ctx, card.DeckID)
		if err != nil {
			return err
		}

		next, err := s.sched.Answer(card, rating, deck.Config, s.timing(now))
		if err != nil {
			if errors.Is(err, srs.ErrCardNotActive) {
				return fmt.Errorf("%w: %s is suspended or buried", ErrInvalidState, id)
			}
			return err
		}

		if err := st.cards.UpdateMultiple(ctx, []*domain.Card{next}); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("card answered",
		slog.String("card_id", id.String()),
		slog.String("rating", string(rating)),
		slog.String("state", string(updated.State)),
		slog.Int("interval", updated.Interval))
	return updated, nil
}

// Bury sets the buried overlay on the given cards. Burying an already
// buried card is a no-op success. Returns the number of cards whose
// state actually changed; any unknown id fails the whole batch.
func (s *Service) Bury(ctx context.Context, ids []uuid.UUID, now time.Time) (int64, error) {
	return s.setOverlay(ctx, ids, now, func(c *domain.Card) bool {
		if c.Buried {
			return false
		}
		c.Buried = true
		return true
	})
}

// Suspend sets the suspended overlay on the given cards. Idempotent in
// the same way as Bury.
func (s *Service) Suspend(ctx context.Context, ids []uuid.UUID, now time.Time) (int64, error) {
	return s.setOverlay(ctx, ids, now, func(c *domain.Card) bool {
		if c.Suspended {
			return false
		}
		c.Suspended = true
		return true
	})
}

// Restore clears both overlays, whichever was set, returning each card
// to its underlying queue unchanged. Idempotent on cards with no
// overlay.
func (s *Service) Restore(ctx context.Context, ids []uuid.UUID, now time.Time) (int64, error) {
	return s.setOverlay(ctx, ids, now, func(c *domain.Card) bool {
		if !c.Suspended && !c.Buried {
			return false
		}
		c.Suspended = false
		c.Buried = false
		return true
	})
}

// setOverlay applies an overlay mutation to a validated batch and
// persists only the cards it changed.
func (s *Service) setOverlay(
	ctx context.Context,
	ids []uuid.UUID,
	now time.Time,
	mutate func(*domain.Card) bool,
) (int64, error) {
	var affected int64
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		cards, err := st.cards.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}

		changed := make([]*domain.Card, 0, len(cards))
		for _, card := range cards {
			next := card.Clone()
			if !mutate(next) {
				continue
			}
			next.UpdatedAt = now.UTC()
			changed = append(changed, next)
		}
		if len(changed) == 0 {
			return nil
		}
		if err := st.cards.UpdateMultiple(ctx, changed); err != nil {
			return err
		}
		affected = int64(len(changed))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Forget resets the given cards to the new state at the tail of the new
// queue. Suspended/buried overlays survive the reset: a forgotten card
// stays hidden until restored.
func (s *Service) Forget(ctx context.Context, ids []uuid.UUID, now time.Time) (int64, error) {
	var affected int64
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		cards, err := st.cards.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		pos, err := st.cards.NextNewPosition(ctx)
		if err != nil {
			return err
		}

		timing := s.timing(now)
		reset := make([]*domain.Card, 0, len(cards))
		for i, card := range cards {
			deck, err := st.decks.GetByID(ctx, card.DeckID)
			if err != nil {
				return err
			}
			reset = append(reset, s.sched.Forget(card, pos+int64(i), deck.Config, timing))
		}
		if err := st.cards.UpdateMultiple(ctx, reset); err != nil {
			return err
		}
		affected = int64(len(reset))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Reschedule sets a card's due date directly from a "+Nd" or
// "YYYY-MM-DD" specification. A malformed spec fails with
// ErrInvalidArgument before anything is touched; interval and ease are
// left alone on review cards.
func (s *Service) Reschedule(
	ctx context.Context,
	id uuid.UUID,
	spec string,
	now time.Time,
) (*domain.Card, error) {
	timing := s.timing(now)
	due, err := srs.ParseDueSpec(spec, timing)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var updated *domain.Card
	err = s.inTx(ctx, func(ctx context.Context, st txStores) error {
		card, err := st.cards.GetByID(ctx, id)
		if err != nil {
			return err
		}
		deck, err := st.decks.GetByID(ctx, card.DeckID)
		if err != nil {
			return err
		}

		next := s.sched.SetDueDate(card, due.DaysFromToday, deck.Config, timing)
		if err := st.cards.UpdateMultiple(ctx, []*domain.Card{next}); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetFlag sets the flag on a batch of cards. The flag must be between
// 0 and domain.MaxFlag; 0 clears it.
func (s *Service) SetFlag(ctx context.Context, ids []uuid.UUID, flag int, now time.Time) (int64, error) {
	if flag < 0 || flag > domain.MaxFlag {
		return 0, fmt.Errorf("%w: %d", ErrInvalidFlag, flag)
	}
	return s.setOverlay(ctx, ids, now, func(c *domain.Card) bool {
		if c.Flag == flag {
			return false
		}
		c.Flag = flag
		return true
	})
}

// MoveDeck moves a batch of cards into another deck. The target deck
// must exist; an unknown deck or card id fails the whole batch.
func (s *Service) MoveDeck(ctx context.Context, ids []uuid.UUID, deckID uuid.UUID, now time.Time) (int64, error) {
	var affected int64
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		if _, err := st.decks.GetByID(ctx, deckID); err != nil {
			return err
		}
		cards, err := st.cards.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}

		moved := make([]*domain.Card, 0, len(cards))
		for _, card := range cards {
			if card.DeckID == deckID {
				continue
			}
			next := card.Clone()
			next.DeckID = deckID
			next.UpdatedAt = now.UTC()
			moved = append(moved, next)
		}
		if len(moved) == 0 {
			return nil
		}
		if err := st.cards.UpdateMultiple(ctx, moved); err != nil {
			return err
		}
		affected = int64(len(moved))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// DeleteCards removes a batch of cards and any notes left without
// cards. Any unknown card id fails the whole batch. Returns the number
// of cards deleted.
func (s *Service) DeleteCards(ctx context.Context, ids []uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deleted int64
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		cards, err := st.cards.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}

		noteIDs := make([]uuid.UUID, 0, len(cards))
		seen := make(map[uuid.UUID]struct{}, len(cards))
		for _, card := range cards {
			if _, ok := seen[card.NoteID]; ok {
				continue
			}
			seen[card.NoteID] = struct{}{}
			noteIDs = append(noteIDs, card.NoteID)
		}

		deleted, err = st.cards.DeleteMultiple(ctx, ids)
		if err != nil {
			return err
		}

		orphans, err := st.notes.DeleteOrphaned(ctx, noteIDs)
		if err != nil {
			return err
		}
		if orphans > 0 {
			log.Debug("removed orphaned notes", slog.Int64("count", orphans))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Ensure the store error sentinels stay visible to callers of this
// package without importing store directly in every handler.
var (
	ErrCardNotFound     = store.ErrCardNotFound
	ErrNoteNotFound     = store.ErrNoteNotFound
	ErrDeckNotFound     = store.ErrDeckNotFound
	ErrNotetypeNotFound = store.ErrNotetypeNotFound
)
