package api

import (
	"time"

	"github.com/rotekit/rote/internal/domain"
)

// CardResponse is the wire representation of a card.
type CardResponse struct {
	ID          string    `json:"id"`
	NoteID      string    `json:"note_id"`
	DeckID      string    `json:"deck_id"`
	TemplateOrd int       `json:"template_ord"`
	State       string    `json:"state"`
	Due         int64     `json:"due"`
	Step        int       `json:"step"`
	Interval    int       `json:"interval"`
	EaseFactor  float64   `json:"ease_factor"`
	Lapses      int       `json:"lapses"`
	Reps        int       `json:"reps"`
	Suspended   bool      `json:"suspended"`
	Buried      bool      `json:"buried"`
	Flag        int       `json:"flag"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NoteResponse is the wire representation of a note. Fields are in the
// notetype's declared order.
type NoteResponse struct {
	ID         string    `json:"id"`
	NotetypeID string    `json:"notetype_id"`
	Fields     []string  `json:"fields"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DeckResponse is the wire representation of a deck.
type DeckResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Config    domain.DeckConfig `json:"config"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NotetypeResponse is the wire representation of a notetype.
type NotetypeResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Fields    []string `json:"fields"`
	Templates []string `json:"templates"`
}

// AffectedResponse reports how many entities a batch operation changed.
type AffectedResponse struct {
	Affected int64 `json:"affected"`
}

func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:          card.ID.String(),
		NoteID:      card.NoteID.String(),
		DeckID:      card.DeckID.String(),
		TemplateOrd: card.TemplateOrd,
		State:       string(card.State),
		Due:         card.Due,
		Step:        card.Step,
		Interval:    card.Interval,
		EaseFactor:  card.EaseFactor,
		Lapses:      card.Lapses,
		Reps:        card.Reps,
		Suspended:   card.Suspended,
		Buried:      card.Buried,
		Flag:        card.Flag,
		CreatedAt:   card.CreatedAt,
		UpdatedAt:   card.UpdatedAt,
	}
}

func noteToResponse(note *domain.Note) NoteResponse {
	return NoteResponse{
		ID:         note.ID.String(),
		NotetypeID: note.NotetypeID.String(),
		Fields:     note.Fields,
		Tags:       note.Tags,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}
}

func deckToResponse(deck *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:        deck.ID.String(),
		Name:      deck.Name,
		Config:    deck.Config,
		CreatedAt: deck.CreatedAt,
		UpdatedAt: deck.UpdatedAt,
	}
}

func notetypeToResponse(nt *domain.Notetype) NotetypeResponse {
	fields := make([]string, len(nt.Fields))
	for i, f := range nt.Fields {
		fields[i] = f.Name
	}
	templates := make([]string, len(nt.Templates))
	for i, t := range nt.Templates {
		templates[i] = t.Name
	}
	return NotetypeResponse{
		ID:        nt.ID.String(),
		Name:      nt.Name,
		Fields:    fields,
		Templates: templates,
	}
}
