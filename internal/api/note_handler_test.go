package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotekit/rote/internal/api"
)

func TestAddNoteEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	t.Run("creates a note and its cards", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/notes", map[string]any{
			"deck_name":     "Default",
			"notetype_name": "Basic",
			"fields":        map[string]string{"Front": "Q", "Back": "A"},
			"tags":          []string{"new-material"},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		resp := decodeBody[api.AddNoteResponse](t, w)
		assert.NotEmpty(t, resp.NoteID)
		assert.Len(t, resp.CardIDs, 1)

		noteResp := ts.do(t, http.MethodGet, "/notes/"+resp.NoteID, nil)
		require.Equal(t, http.StatusOK, noteResp.Code)
		note := decodeBody[api.NoteResponse](t, noteResp)
		assert.Equal(t, []string{"Q", "A"}, note.Fields)
		assert.Equal(t, []string{"new-material"}, note.Tags)
	})

	t.Run("deck name matching ignores case", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/notes", map[string]any{
			"deck_name":     "default",
			"notetype_name": "basic",
			"fields":        map[string]string{"Front": "Q2"},
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown deck is a 404, never auto-created", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/notes", map[string]any{
			"deck_name":     "Nope",
			"notetype_name": "Basic",
			"fields":        map[string]string{"Front": "Q"},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)

		// The bad request must not have created the deck as a side effect.
		w = ts.do(t, http.MethodPost, "/notes", map[string]any{
			"deck_name":     "Nope",
			"notetype_name": "Basic",
			"fields":        map[string]string{"Front": "Q"},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("undeclared field is a 400", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/notes", map[string]any{
			"deck_name":     "Default",
			"notetype_name": "Basic",
			"fields":        map[string]string{"Front": "Q", "Bogus": "x"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing required fields fail validation", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/notes", map[string]any{
			"deck_name": "Default",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeckEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/decks", map[string]string{"name": "Languages::Japanese"})
	require.Equal(t, http.StatusCreated, w.Code)
	deck := decodeBody[api.DeckResponse](t, w)
	assert.Equal(t, "Languages::Japanese", deck.Name)

	w = ts.do(t, http.MethodDelete, "/decks/"+deck.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeBody[api.AffectedResponse](t, w).Affected)

	w = ts.do(t, http.MethodPost, "/decks", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	tagged := ts.addCard(t, "alpha", "hit")
	ts.addCard(t, "beta")

	w := ts.do(t, http.MethodPost, "/search", map[string]string{"query": "tag:hit"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.SearchResponse](t, w)
	assert.Equal(t, []string{tagged.String()}, resp.CardIDs)

	w = ts.do(t, http.MethodPost, "/search", map[string]string{"query": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[api.SearchResponse](t, w).CardIDs, 2)

	w = ts.do(t, http.MethodPost, "/search", map[string]string{"query": "is:nonsense"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "position", "syntax errors carry the offending position")
}
