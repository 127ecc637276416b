package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rotekit/rote/internal/query"
	"github.com/rotekit/rote/internal/service/collection"
	"github.com/rotekit/rote/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes.
// This keeps internal error types from dictating the wire contract.
func MapErrorToStatusCode(err error) int {
	var syntaxErr *query.SyntaxError
	switch {
	// Not found errors
	case errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrNoteNotFound),
		errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, store.ErrNotetypeNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDeckNameExists),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Illegal state transitions
	case errors.Is(err, collection.ErrInvalidState):
		return http.StatusConflict

	// Bad request errors
	case errors.As(err, &syntaxErr),
		errors.Is(err, collection.ErrInvalidArgument),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error. Query syntax errors keep their full text since they are built
// from the user's own input and carry the position the user needs.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var syntaxErr *query.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		return syntaxErr.Error()

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrNoteNotFound):
		return "Note not found"
	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"
	case errors.Is(err, store.ErrNotetypeNotFound):
		return "Notetype not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrDeckNameExists):
		return "A deck with that name already exists"

	case errors.Is(err, collection.ErrInvalidState):
		return "Operation not allowed for the card's current state"

	case errors.Is(err, collection.ErrInvalidFlag):
		return "Flag value out of range"

	case errors.Is(err, collection.ErrInvalidArgument):
		return "Invalid argument"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into short,
// user-friendly messages without leaking struct internals.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'AnswerRequest.Rating' Error:Field validation
		// for 'Rating' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte", "lte":
		return "out of range"
	default:
		return "validation failed"
	}
}
