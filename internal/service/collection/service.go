// Package collection implements the collection façade: the single
// entry point coordinating the query engine and the scheduler against
// the persisted collection. Every mutating operation runs inside one
// transaction, validates all referenced ids before touching anything,
// and is all-or-nothing.
package collection

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/rotekit/rote/internal/srs"
	"github.com/rotekit/rote/internal/store"
)

// Service is the collection façade. All operations take the current
// time from the caller; the service never reads the wall clock, which
// keeps scheduling deterministic under test.
type Service struct {
	tx        store.Transactor
	cards     store.CardStore
	notes     store.NoteStore
	decks     store.DeckStore
	notetypes store.NotetypeStore
	sched     *srs.Scheduler
	epoch     time.Time
	logger    *slog.Logger
}

// New creates the collection façade.
func New(
	tx store.Transactor,
	cards store.CardStore,
	notes store.NoteStore,
	decks store.DeckStore,
	notetypes store.NotetypeStore,
	sched *srs.Scheduler,
	epoch time.Time,
	log *slog.Logger,
) *Service {
	if tx == nil {
		panic("tx cannot be nil")
	}
	if cards == nil || notes == nil || decks == nil || notetypes == nil {
		panic("stores cannot be nil")
	}
	if sched == nil {
		panic("sched cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		tx:        tx,
		cards:     cards,
		notes:     notes,
		decks:     decks,
		notetypes: notetypes,
		sched:     sched,
		epoch:     epoch,
		logger:    log.With(slog.String("component", "collection")),
	}
}

// timing derives the scheduler timing for a caller-supplied now.
func (s *Service) timing(now time.Time) srs.Timing {
	return srs.TimingFor(now, s.epoch)
}

// txStores bundles the entity stores bound to one transaction.
type txStores struct {
	cards     store.CardStore
	notes     store.NoteStore
	decks     store.DeckStore
	notetypes store.NotetypeStore
}

// inTx runs fn inside a single transaction with all stores bound to it.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context, st txStores) error) error {
	return s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, txStores{
			cards:     s.cards.WithTx(tx),
			notes:     s.notes.WithTx(tx),
			decks:     s.decks.WithTx(tx),
			notetypes: s.notetypes.WithTx(tx),
		})
	})
}
