package collection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/query"
)

// CompileQuery parses search text into a predicate tree. Malformed
// queries fail with a *query.SyntaxError naming the offending token.
func (s *Service) CompileQuery(text string) (query.Node, error) {
	return query.Compile(text)
}

// Search compiles the query text and evaluates it against a snapshot of
// the collection. The snapshot is loaded inside one transaction, so the
// result reflects either the pre- or post-state of any concurrent
// write, never a partial one. Results are ordered by due-relevant sort
// key, ties by card id.
func (s *Service) Search(ctx context.Context, text string, now time.Time) ([]uuid.UUID, error) {
	root, err := query.Compile(text)
	if err != nil {
		return nil, err
	}

	var snap *query.Snapshot
	err = s.inTx(ctx, func(ctx context.Context, st txStores) error {
		snap, err = s.loadSnapshot(ctx, st, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	return query.Evaluate(root, snap), nil
}

// loadSnapshot reads the full card/note/deck/notetype working set. The
// card list comes back in (due, id) order from the store's range scan.
func (s *Service) loadSnapshot(ctx context.Context, st txStores, now time.Time) (*query.Snapshot, error) {
	cards, err := st.cards.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := st.notes.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	decks, err := st.decks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	notetypes, err := st.notetypes.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &query.Snapshot{
		Cards:     cards,
		Notes:     notes,
		Decks:     decks,
		Notetypes: notetypes,
		Timing:    s.timing(now),
	}, nil
}
