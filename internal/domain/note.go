package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note-specific validation errors
var (
	ErrNoteIDEmpty         = errors.New("note ID cannot be empty")
	ErrNoteNotetypeIDEmpty = errors.New("note notetype ID cannot be empty")
	ErrNoteNoFields        = errors.New("note must have at least one field")
)

// Note is the structured field data cards are generated from. Field
// values are ordered: Fields[i] is the value of the notetype's i-th
// field. Tags are unique and stored sorted for deterministic output.
type Note struct {
	ID         uuid.UUID `json:"id"`
	NotetypeID uuid.UUID `json:"notetype_id"`
	Fields     []string  `json:"fields"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewNote creates a note with the given ordered field values and tags.
// Tags are deduplicated case-insensitively; the first spelling wins.
func NewNote(notetypeID uuid.UUID, fields []string, tags []string) (*Note, error) {
	now := time.Now().UTC()
	note := &Note{
		ID:         uuid.New(),
		NotetypeID: notetypeID,
		Fields:     fields,
		Tags:       NormalizeTags(tags),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}
	return note, nil
}

// Validate checks if the Note has valid data.
func (n *Note) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNoteIDEmpty
	}
	if n.NotetypeID == uuid.Nil {
		return ErrNoteNotetypeIDEmpty
	}
	if len(n.Fields) == 0 {
		return ErrNoteNoFields
	}
	return nil
}

// Clone returns a deep copy of the note. The field and tag slices are
// copied so the clone shares no memory with the original.
func (n *Note) Clone() *Note {
	dup := *n
	dup.Fields = append([]string(nil), n.Fields...)
	dup.Tags = append([]string(nil), n.Tags...)
	return &dup
}

// HasTag reports whether the note carries the given tag, ignoring case.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NormalizeTags trims, deduplicates (case-insensitively) and sorts a
// tag list. Empty tags are dropped.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
