package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notetype-specific validation errors
var (
	ErrNotetypeIDEmpty     = errors.New("notetype ID cannot be empty")
	ErrNotetypeNameEmpty   = errors.New("notetype name cannot be empty")
	ErrNotetypeNoFields    = errors.New("notetype must define at least one field")
	ErrNotetypeNoTemplates = errors.New("notetype must define at least one card template")
)

// NotetypeField is one named, ordered field slot of a notetype.
type NotetypeField struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// CardTemplate describes one card a notetype generates per note. The
// engine only needs the template's identity and ordinal; rendering is
// out of scope.
type CardTemplate struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// Notetype declares the ordered field list of its notes and the card
// templates each note produces. Adding a note of this type creates
// exactly one card per template.
type Notetype struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Fields    []NotetypeField `json:"fields"`
	Templates []CardTemplate  `json:"templates"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewNotetype creates a notetype with the given field and template
// names, assigning ordinals in declaration order.
func NewNotetype(name string, fieldNames, templateNames []string) (*Notetype, error) {
	now := time.Now().UTC()
	nt := &Notetype{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, f := range fieldNames {
		nt.Fields = append(nt.Fields, NotetypeField{Name: f, Ord: i})
	}
	for i, t := range templateNames {
		nt.Templates = append(nt.Templates, CardTemplate{Name: t, Ord: i})
	}

	if err := nt.Validate(); err != nil {
		return nil, err
	}
	return nt, nil
}

// Validate checks if the Notetype has valid data.
func (nt *Notetype) Validate() error {
	if nt.ID == uuid.Nil {
		return ErrNotetypeIDEmpty
	}
	if nt.Name == "" {
		return ErrNotetypeNameEmpty
	}
	if len(nt.Fields) == 0 {
		return ErrNotetypeNoFields
	}
	if len(nt.Templates) == 0 {
		return ErrNotetypeNoTemplates
	}
	return nil
}

// FieldOrd returns the ordinal of the named field, matching
// case-insensitively. The second return is false if no such field is
// declared.
func (nt *Notetype) FieldOrd(name string) (int, bool) {
	for _, f := range nt.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Ord, true
		}
	}
	return 0, false
}

// FieldNames returns the declared field names in order.
func (nt *Notetype) FieldNames() []string {
	names := make([]string, len(nt.Fields))
	for i, f := range nt.Fields {
		names[i] = f.Name
	}
	return names
}
