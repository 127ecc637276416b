package collection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/platform/logger"
)

// AddNote creates a note in the given deck and exactly one card per
// template of the notetype. The deck and notetype must already exist:
// unknown ids fail with the store's not-found errors and nothing is
// created. Field names must all be declared by the notetype.
func (s *Service) AddNote(
	ctx context.Context,
	deckID, notetypeID uuid.UUID,
	fieldValues map[string]string,
	tags []string,
	now time.Time,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var cardIDs []uuid.UUID
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		deck, err := st.decks.GetByID(ctx, deckID)
		if err != nil {
			return err
		}
		notetype, err := st.notetypes.GetByID(ctx, notetypeID)
		if err != nil {
			return err
		}

		fields, err := orderedFields(notetype, fieldValues)
		if err != nil {
			return err
		}

		note, err := domain.NewNote(notetype.ID, fields, tags)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		note.CreatedAt = now.UTC()
		note.UpdatedAt = now.UTC()
		if err := st.notes.Create(ctx, note); err != nil {
			return err
		}

		pos, err := st.cards.NextNewPosition(ctx)
		if err != nil {
			return err
		}

		cards := make([]*domain.Card, 0, len(notetype.Templates))
		for i, tmpl := range notetype.Templates {
			card, err := domain.NewCard(note.ID, deck.ID, tmpl.Ord, pos+int64(i))
			if err != nil {
				return err
			}
			card.EaseFactor = deck.Config.InitialEase
			card.CreatedAt = now.UTC()
			card.UpdatedAt = now.UTC()
			cards = append(cards, card)
		}
		if err := st.cards.CreateMultiple(ctx, cards); err != nil {
			return err
		}

		cardIDs = make([]uuid.UUID, len(cards))
		for i, card := range cards {
			cardIDs[i] = card.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("note added",
		slog.String("deck_id", deckID.String()),
		slog.Int("cards", len(cardIDs)))
	return cardIDs, nil
}

// UpdateNote replaces field values (by name) and, when tags is non-nil,
// the tag set of an existing note. Unknown field names fail with
// ErrInvalidArgument; nothing is written in that case.
func (s *Service) UpdateNote(
	ctx context.Context,
	noteID uuid.UUID,
	fieldValues map[string]string,
	tags []string,
	now time.Time,
) error {
	return s.inTx(ctx, func(ctx context.Context, st txStores) error {
		note, err := st.notes.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		notetype, err := st.notetypes.GetByID(ctx, note.NotetypeID)
		if err != nil {
			return err
		}

		for name, value := range fieldValues {
			ord, ok := notetype.FieldOrd(name)
			if !ok {
				return fmt.Errorf("%w: notetype %q has no field %q",
					ErrInvalidArgument, notetype.Name, name)
			}
			for len(note.Fields) <= ord {
				note.Fields = append(note.Fields, "")
			}
			note.Fields[ord] = value
		}
		if tags != nil {
			note.Tags = domain.NormalizeTags(tags)
		}
		note.UpdatedAt = now.UTC()

		return st.notes.Update(ctx, note)
	})
}

// GetNote retrieves a note by id.
func (s *Service) GetNote(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	return s.notes.GetByID(ctx, id)
}

// orderedFields maps name→value input onto the notetype's declared
// field order. Every supplied name must be declared; undeclared names
// are rejected rather than silently dropped.
func orderedFields(notetype *domain.Notetype, fieldValues map[string]string) ([]string, error) {
	fields := make([]string, len(notetype.Fields))
	for name, value := range fieldValues {
		ord, ok := notetype.FieldOrd(name)
		if !ok {
			return nil, fmt.Errorf("%w: notetype %q has no field %q",
				ErrInvalidArgument, notetype.Name, name)
		}
		fields[ord] = value
	}
	return fields, nil
}
