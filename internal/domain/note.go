package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is a short text note with optional tags.
type Note struct {
	ID        string
	Title     string
	Body      string
	Tags      []string
	UpdatedAt time.Time
}

// NewNote creates a note with a fresh random id.
func NewNote(title, body string, tags []string) Note {
	return Note{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		Tags:      slices.Clone(tags),
		UpdatedAt: time.Now().UTC(),
	}
}

// Equal reports whether two notes hold the same values.
func (n Note) Equal(o Note) bool {
	return n.ID == o.ID &&
		n.Title == o.Title &&
		n.Body == o.Body &&
		slices.Equal(n.Tags, o.Tags) &&
		n.UpdatedAt.Equal(o.UpdatedAt)
}

// Matches reports whether query occurs in the title, the body or one of the
// tags. Matching is case-insensitive; an empty query matches every note.
func (n Note) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Body), q) {
		return true
	}
	return slices.ContainsFunc(n.Tags, func(tag string) bool {
		return strings.EqualFold(tag, q)
	})
}

// NoteModel is the JSON representation of a note used by the notes service.
type NoteModel struct {
	ID        string    `json:"id" validate:"required"`
	Title     string    `json:"title" validate:"required,max=200"`
	Body      string    `json:"body" validate:"max=10000"`
	Tags      []string  `json:"tags,omitempty" validate:"max=16,dive,required"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToEntity converts the model to a Note.
func (m NoteModel) ToEntity() Note {
	return Note{
		ID:        m.ID,
		Title:     m.Title,
		Body:      m.Body,
		Tags:      slices.Clone(m.Tags),
		UpdatedAt: m.UpdatedAt,
	}
}

// NoteToModel converts a Note to its wire form.
func NoteToModel(n Note) NoteModel {
	return NoteModel{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Tags:      slices.Clone(n.Tags),
		UpdatedAt: n.UpdatedAt,
	}
}

// NoteID returns the id of a note. It is the key function for local stores.
func NoteID(n Note) string { return n.ID }

// NoteModelID returns the id of a note model.
func NoteModelID(m NoteModel) string { return m.ID }
