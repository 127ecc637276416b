package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotekit/rote/internal/api"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/mocks"
	"github.com/rotekit/rote/internal/service/collection"
	"github.com/rotekit/rote/internal/srs"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// testServer stands up the card/note/deck/search handlers over the
// in-memory stores.
type testServer struct {
	router   chi.Router
	svc      *collection.Service
	deck     *domain.Deck
	notetype *domain.Notetype
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ms := mocks.NewStore()

	deck, err := domain.NewDeck("Default")
	require.NoError(t, err)
	deck.Config.FuzzEnabled = false
	ms.SeedDeck(deck)

	nt, err := domain.NewNotetype("Basic", []string{"Front", "Back"}, []string{"Card 1"})
	require.NoError(t, err)
	ms.SeedNotetype(nt)

	svc := collection.New(
		ms.Transactor(), ms.Cards(), ms.Notes(), ms.Decks(), ms.Notetypes(),
		srs.NewScheduler(1), testEpoch, slog.Default(),
	)

	log := slog.Default()
	cardHandler := api.NewCardHandler(svc, log)
	noteHandler := api.NewNoteHandler(svc, log)
	deckHandler := api.NewDeckHandler(svc, log)
	searchHandler := api.NewSearchHandler(svc, log)

	r := chi.NewRouter()
	r.Get("/cards/{id}", cardHandler.GetCard)
	r.Post("/cards/{id}/answer", cardHandler.Answer)
	r.Post("/cards/{id}/schedule", cardHandler.Schedule)
	r.Post("/cards/suspend", cardHandler.Suspend)
	r.Post("/cards/restore", cardHandler.Restore)
	r.Post("/cards/delete", cardHandler.Delete)
	r.Post("/notes", noteHandler.AddNote)
	r.Get("/notes/{id}", noteHandler.GetNote)
	r.Post("/decks", deckHandler.CreateDeck)
	r.Delete("/decks/{id}", deckHandler.DeleteDeck)
	r.Post("/search", searchHandler.Search)

	return &testServer{router: r, svc: svc, deck: deck, notetype: nt}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) addCard(t *testing.T, front string, tags ...string) uuid.UUID {
	t.Helper()
	ids, err := ts.svc.AddNote(context.Background(),
		ts.deck.ID, ts.notetype.ID,
		map[string]string{"Front": front, "Back": "b"}, tags, time.Now())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	return ids[0]
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestGetCardEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	id := ts.addCard(t, "hello")

	w := ts.do(t, http.MethodGet, "/cards/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[api.CardResponse](t, w)
	assert.Equal(t, id.String(), resp.ID)
	assert.Equal(t, "new", resp.State)

	w = ts.do(t, http.MethodGet, "/cards/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/cards/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnswerEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	id := ts.addCard(t, "answer-me")

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/cards/%s/answer", id),
		map[string]string{"rating": "good"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[api.CardResponse](t, w)
	assert.Equal(t, "learning", resp.State)
	assert.Equal(t, 1, resp.Reps)

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/cards/%s/answer", id),
		map[string]string{"rating": "excellent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Answering a suspended card is a state conflict, not a 400.
	_, err := ts.svc.Suspend(context.Background(), []uuid.UUID{id}, time.Now())
	require.NoError(t, err)
	w = ts.do(t, http.MethodPost, fmt.Sprintf("/cards/%s/answer", id),
		map[string]string{"rating": "good"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestScheduleEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	id := ts.addCard(t, "schedule-me")

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/cards/%s/schedule", id),
		map[string]string{"due": "+3d"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.CardResponse](t, w)
	assert.Equal(t, "review", resp.State)

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/cards/%s/schedule", id),
		map[string]string{"due": "whenever"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuspendRestoreEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	id := ts.addCard(t, "suspend-me")

	w := ts.do(t, http.MethodPost, "/cards/suspend",
		map[string]any{"card_ids": []string{id.String()}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeBody[api.AffectedResponse](t, w).Affected)

	w = ts.do(t, http.MethodPost, "/cards/restore",
		map[string]any{"card_ids": []string{id.String()}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeBody[api.AffectedResponse](t, w).Affected)

	// Unknown id in the batch: 404, nothing changes.
	w = ts.do(t, http.MethodPost, "/cards/suspend",
		map[string]any{"card_ids": []string{id.String(), uuid.NewString()}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Empty batch fails validation.
	w = ts.do(t, http.MethodPost, "/cards/suspend",
		map[string]any{"card_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCardsEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	id := ts.addCard(t, "delete-me")

	w := ts.do(t, http.MethodPost, "/cards/delete",
		map[string]any{"card_ids": []string{id.String()}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeBody[api.AffectedResponse](t, w).Affected)

	w = ts.do(t, http.MethodGet, "/cards/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
