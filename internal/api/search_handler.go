package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rotekit/rote/internal/api/shared"
	"github.com/rotekit/rote/internal/platform/logger"
	"github.com/rotekit/rote/internal/service/collection"
)

// SearchHandler handles search HTTP requests.
type SearchHandler struct {
	collection *collection.Service
	logger     *slog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc *collection.Service, logger *slog.Logger) *SearchHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("collection service cannot be nil for SearchHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SearchHandler")
	}

	return &SearchHandler{
		collection: svc,
		logger:     logger.With(slog.String("component", "search_handler")),
	}
}

// SearchRequest is the request body for a card search. An empty query
// matches every card.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse lists the matched card ids in result order.
type SearchResponse struct {
	CardIDs []string `json:"card_ids"`
}

// Search handles POST /search requests. Results come back in a stable
// order: most urgent due value first, ties broken by card id. A
// malformed query is a 400 whose message carries the byte position of
// the offending token.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SearchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	ids, err := h.collection.Search(r.Context(), req.Query, time.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := SearchResponse{CardIDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		resp.CardIDs = append(resp.CardIDs, id.String())
	}

	log.Debug("search executed",
		slog.String("query", req.Query),
		slog.Int("matches", len(ids)))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
