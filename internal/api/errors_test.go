package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotekit/rote/internal/api"
	"github.com/rotekit/rote/internal/query"
	"github.com/rotekit/rote/internal/service/collection"
	"github.com/rotekit/rote/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "card not found", err: store.ErrCardNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", store.ErrDeckNotFound), want: http.StatusNotFound},
		{name: "deck name exists", err: store.ErrDeckNameExists, want: http.StatusConflict},
		{name: "invalid state", err: collection.ErrInvalidState, want: http.StatusConflict},
		{name: "invalid argument", err: collection.ErrInvalidArgument, want: http.StatusBadRequest},
		{name: "invalid flag", err: collection.ErrInvalidFlag, want: http.StatusBadRequest},
		{name: "query syntax error", err: &query.SyntaxError{Pos: 3, Message: "bad"}, want: http.StatusBadRequest},
		{name: "unknown error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, api.MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Card not found", api.GetSafeErrorMessage(store.ErrCardNotFound))
	assert.Equal(t, "An unexpected error occurred", api.GetSafeErrorMessage(nil))

	// Internal detail must not leak through.
	leaky := fmt.Errorf("pq: connection refused on 10.0.0.7: %w", errors.New("boom"))
	assert.Equal(t, "An unexpected error occurred", api.GetSafeErrorMessage(leaky))

	// Query syntax errors are the explicit exception: the user needs
	// the position.
	syntaxErr := &query.SyntaxError{Pos: 4, Token: "is:x", Message: "unknown is: state"}
	assert.Contains(t, api.GetSafeErrorMessage(syntaxErr), "position 4")
}
