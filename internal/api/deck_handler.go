package api

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/rotekit/rote/internal/api/shared"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/platform/logger"
	"github.com/rotekit/rote/internal/service/collection"
)

// DeckHandler handles deck and notetype HTTP requests.
type DeckHandler struct {
	collection *collection.Service
	logger     *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(svc *collection.Service, logger *slog.Logger) *DeckHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("collection service cannot be nil for DeckHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}

	return &DeckHandler{
		collection: svc,
		logger:     logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /decks requests, sorted by name.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.collection.ListDecks(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	list := make([]*domain.Deck, 0, len(decks))
	for _, deck := range decks {
		list = append(list, deck)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	resp := make([]DeckResponse, 0, len(list))
	for _, deck := range list {
		resp = append(resp, deckToResponse(deck))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetDeck handles GET /decks/{id} requests.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	deck, err := h.collection.GetDeck(r.Context(), deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// CreateDeckRequest is the request body for creating a deck. "::" in
// the name separates parent from child; missing ancestors are created.
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateDeck handles POST /decks requests.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	deck, err := h.collection.CreateDeck(r.Context(), req.Name, time.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("deck created", slog.String("name", deck.Name))
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(deck))
}

// DeleteDeck handles DELETE /decks/{id} requests. Child decks are
// removed with the parent; their cards go with them and notes left
// without cards are cleaned up.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.collection.DeleteDeck(r.Context(), deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AffectedResponse{Affected: removed})
}

// ListNotetypes handles GET /notetypes requests.
func (h *DeckHandler) ListNotetypes(w http.ResponseWriter, r *http.Request) {
	notetypes, err := h.collection.ListNotetypes(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := make([]NotetypeResponse, 0, len(notetypes))
	for _, nt := range notetypes {
		resp = append(resp, notetypeToResponse(nt))
	}
	sort.Slice(resp, func(i, j int) bool { return resp[i].Name < resp[j].Name })
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateNotetypeRequest is the request body for creating a notetype.
type CreateNotetypeRequest struct {
	Name      string   `json:"name"      validate:"required"`
	Fields    []string `json:"fields"    validate:"required,min=1"`
	Templates []string `json:"templates" validate:"required,min=1"`
}

// CreateNotetype handles POST /notetypes requests.
func (h *DeckHandler) CreateNotetype(w http.ResponseWriter, r *http.Request) {
	var req CreateNotetypeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	nt, err := h.collection.CreateNotetype(r.Context(), req.Name, req.Fields, req.Templates, time.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, notetypeToResponse(nt))
}
