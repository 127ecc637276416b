// Package mocks provides in-memory implementations of the store
// interfaces for tests. They mirror the semantics of the postgres
// stores, including the schema's cascade deletes, so service tests can
// run without a database.
package mocks

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/store"
)

// Store is a shared in-memory collection all four entity stores
// operate on.
type Store struct {
	mu        sync.Mutex
	cards     map[uuid.UUID]*domain.Card
	notes     map[uuid.UUID]*domain.Note
	decks     map[uuid.UUID]*domain.Deck
	notetypes map[uuid.UUID]*domain.Notetype
}

// NewStore creates an empty in-memory collection.
func NewStore() *Store {
	return &Store{
		cards:     make(map[uuid.UUID]*domain.Card),
		notes:     make(map[uuid.UUID]*domain.Note),
		decks:     make(map[uuid.UUID]*domain.Deck),
		notetypes: make(map[uuid.UUID]*domain.Notetype),
	}
}

// Transactor returns a store.Transactor that simply runs the function;
// the mutex on Store stands in for transaction isolation.
func (s *Store) Transactor() store.Transactor { return &memTransactor{} }

// Cards returns the in-memory CardStore.
func (s *Store) Cards() store.CardStore { return &cardStore{s: s} }

// Notes returns the in-memory NoteStore.
func (s *Store) Notes() store.NoteStore { return &noteStore{s: s} }

// Decks returns the in-memory DeckStore.
func (s *Store) Decks() store.DeckStore { return &deckStore{s: s} }

// Notetypes returns the in-memory NotetypeStore.
func (s *Store) Notetypes() store.NotetypeStore { return &notetypeStore{s: s} }

// SeedDeck inserts a deck directly, for test setup.
func (s *Store) SeedDeck(deck *domain.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks[deck.ID] = deck
}

// SeedNotetype inserts a notetype directly, for test setup.
func (s *Store) SeedNotetype(nt *domain.Notetype) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notetypes[nt.ID] = nt
}

type memTransactor struct{}

func (t *memTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// --- card store ---

type cardStore struct{ s *Store }

func (c *cardStore) WithTx(_ *sql.Tx) store.CardStore { return c }

func (c *cardStore) CreateMultiple(_ context.Context, cards []*domain.Card) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, card := range cards {
		if _, ok := c.s.notes[card.NoteID]; !ok {
			return fmt.Errorf("%w: card %s references a missing note or deck",
				store.ErrInvalidEntity, card.ID)
		}
		if _, ok := c.s.decks[card.DeckID]; !ok {
			return fmt.Errorf("%w: card %s references a missing note or deck",
				store.ErrInvalidEntity, card.ID)
		}
		c.s.cards[card.ID] = card.Clone()
	}
	return nil
}

func (c *cardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	card, ok := c.s.cards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrCardNotFound, id)
	}
	return card.Clone(), nil
}

func (c *cardStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Card, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cards := make([]*domain.Card, 0, len(ids))
	for _, id := range ids {
		card, ok := c.s.cards[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", store.ErrCardNotFound, id)
		}
		cards = append(cards, card.Clone())
	}
	return cards, nil
}

func (c *cardStore) UpdateMultiple(_ context.Context, cards []*domain.Card) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, card := range cards {
		if _, ok := c.s.cards[card.ID]; !ok {
			return fmt.Errorf("%w: %s", store.ErrCardNotFound, card.ID)
		}
	}
	for _, card := range cards {
		c.s.cards[card.ID] = card.Clone()
	}
	return nil
}

func (c *cardStore) DeleteMultiple(_ context.Context, ids []uuid.UUID) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := c.s.cards[id]; ok {
			delete(c.s.cards, id)
			n++
		}
	}
	return n, nil
}

func (c *cardStore) ListByNoteID(_ context.Context, noteID uuid.UUID) ([]*domain.Card, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var cards []*domain.Card
	for _, card := range c.s.cards {
		if card.NoteID == noteID {
			cards = append(cards, card.Clone())
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].TemplateOrd < cards[j].TemplateOrd })
	return cards, nil
}

func (c *cardStore) ListAll(_ context.Context) ([]*domain.Card, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cards := make([]*domain.Card, 0, len(c.s.cards))
	for _, card := range c.s.cards {
		cards = append(cards, card.Clone())
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Due != cards[j].Due {
			return cards[i].Due < cards[j].Due
		}
		return bytes.Compare(cards[i].ID[:], cards[j].ID[:]) < 0
	})
	return cards, nil
}

func (c *cardStore) NextNewPosition(_ context.Context) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var pos int64
	for _, card := range c.s.cards {
		if card.State == domain.CardStateNew && card.Due >= pos {
			pos = card.Due + 1
		}
	}
	return pos, nil
}

// --- note store ---

type noteStore struct{ s *Store }

func (n *noteStore) WithTx(_ *sql.Tx) store.NoteStore { return n }

func (n *noteStore) Create(_ context.Context, note *domain.Note) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if _, ok := n.s.notetypes[note.NotetypeID]; !ok {
		return fmt.Errorf("%w: notetype %s not found", store.ErrInvalidEntity, note.NotetypeID)
	}
	n.s.notes[note.ID] = note.Clone()
	return nil
}

func (n *noteStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Note, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	note, ok := n.s.notes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNoteNotFound, id)
	}
	return note.Clone(), nil
}

func (n *noteStore) Update(_ context.Context, note *domain.Note) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if _, ok := n.s.notes[note.ID]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNoteNotFound, note.ID)
	}
	n.s.notes[note.ID] = note.Clone()
	return nil
}

func (n *noteStore) Delete(_ context.Context, id uuid.UUID) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if _, ok := n.s.notes[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNoteNotFound, id)
	}
	delete(n.s.notes, id)
	for cardID, card := range n.s.cards {
		if card.NoteID == id {
			delete(n.s.cards, cardID)
		}
	}
	return nil
}

func (n *noteStore) DeleteOrphaned(_ context.Context, ids []uuid.UUID) (int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	var removed int64
	for _, id := range ids {
		if _, ok := n.s.notes[id]; !ok {
			continue
		}
		orphaned := true
		for _, card := range n.s.cards {
			if card.NoteID == id {
				orphaned = false
				break
			}
		}
		if orphaned {
			delete(n.s.notes, id)
			removed++
		}
	}
	return removed, nil
}

func (n *noteStore) ListAll(_ context.Context) (map[uuid.UUID]*domain.Note, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	notes := make(map[uuid.UUID]*domain.Note, len(n.s.notes))
	for id, note := range n.s.notes {
		notes[id] = note.Clone()
	}
	return notes, nil
}

// --- deck store ---

type deckStore struct{ s *Store }

func (d *deckStore) WithTx(_ *sql.Tx) store.DeckStore { return d }

func (d *deckStore) Create(_ context.Context, deck *domain.Deck) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, existing := range d.s.decks {
		if strings.EqualFold(existing.Name, deck.Name) {
			return fmt.Errorf("%w: %q", store.ErrDeckNameExists, deck.Name)
		}
	}
	d.s.decks[deck.ID] = deck
	return nil
}

func (d *deckStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	deck, ok := d.s.decks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrDeckNotFound, id)
	}
	return deck, nil
}

func (d *deckStore) GetByName(_ context.Context, name string) (*domain.Deck, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, deck := range d.s.decks {
		if strings.EqualFold(deck.Name, name) {
			return deck, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", store.ErrDeckNotFound, name)
}

func (d *deckStore) Update(_ context.Context, deck *domain.Deck) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if _, ok := d.s.decks[deck.ID]; !ok {
		return fmt.Errorf("%w: %s", store.ErrDeckNotFound, deck.ID)
	}
	d.s.decks[deck.ID] = deck
	return nil
}

func (d *deckStore) Delete(_ context.Context, ids []uuid.UUID) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, id := range ids {
		delete(d.s.decks, id)
		// Emulate the schema's ON DELETE CASCADE on cards.
		for cardID, card := range d.s.cards {
			if card.DeckID == id {
				delete(d.s.cards, cardID)
			}
		}
	}
	return nil
}

func (d *deckStore) ListAll(_ context.Context) (map[uuid.UUID]*domain.Deck, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	decks := make(map[uuid.UUID]*domain.Deck, len(d.s.decks))
	for id, deck := range d.s.decks {
		decks[id] = deck
	}
	return decks, nil
}

// --- notetype store ---

type notetypeStore struct{ s *Store }

func (n *notetypeStore) WithTx(_ *sql.Tx) store.NotetypeStore { return n }

func (n *notetypeStore) Create(_ context.Context, nt *domain.Notetype) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.s.notetypes[nt.ID] = nt
	return nil
}

func (n *notetypeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Notetype, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	nt, ok := n.s.notetypes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotetypeNotFound, id)
	}
	return nt, nil
}

func (n *notetypeStore) GetByName(_ context.Context, name string) (*domain.Notetype, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	for _, nt := range n.s.notetypes {
		if strings.EqualFold(nt.Name, name) {
			return nt, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", store.ErrNotetypeNotFound, name)
}

func (n *notetypeStore) ListAll(_ context.Context) (map[uuid.UUID]*domain.Notetype, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	notetypes := make(map[uuid.UUID]*domain.Notetype, len(n.s.notetypes))
	for id, nt := range n.s.notetypes {
		notetypes[id] = nt
	}
	return notetypes, nil
}
