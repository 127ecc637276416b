package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rotekit/rote/internal/api/shared"
	"github.com/rotekit/rote/internal/platform/logger"
	"github.com/rotekit/rote/internal/service/collection"
)

// NoteHandler handles note-related HTTP requests.
type NoteHandler struct {
	collection *collection.Service
	logger     *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc *collection.Service, logger *slog.Logger) *NoteHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("collection service cannot be nil for NoteHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NoteHandler")
	}

	return &NoteHandler{
		collection: svc,
		logger:     logger.With(slog.String("component", "note_handler")),
	}
}

// AddNoteRequest is the request body for creating a note. Deck and
// notetype are addressed by name; both must already exist.
type AddNoteRequest struct {
	DeckName     string            `json:"deck_name"     validate:"required"`
	NotetypeName string            `json:"notetype_name" validate:"required"`
	Fields       map[string]string `json:"fields"        validate:"required"`
	Tags         []string          `json:"tags"`
}

// AddNoteResponse reports the created note and its generated cards.
type AddNoteResponse struct {
	NoteID  string   `json:"note_id"`
	CardIDs []string `json:"card_ids"`
}

// AddNote handles POST /notes requests. One card is generated per
// template of the notetype. An unknown deck or notetype name is a 404;
// decks are never created implicitly here.
func (h *NoteHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AddNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	deck, err := h.collection.GetDeckByName(r.Context(), req.DeckName)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	notetype, err := h.collection.GetNotetypeByName(r.Context(), req.NotetypeName)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	now := time.Now()
	cardIDs, err := h.collection.AddNote(r.Context(), deck.ID, notetype.ID, req.Fields, req.Tags, now)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// Every generated card shares the note id; read it back off the
	// first card.
	first, err := h.collection.GetCard(r.Context(), cardIDs[0])
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := AddNoteResponse{NoteID: first.NoteID.String()}
	for _, id := range cardIDs {
		resp.CardIDs = append(resp.CardIDs, id.String())
	}

	log.Debug("note added",
		slog.String("deck", deck.Name),
		slog.String("notetype", notetype.Name),
		slog.Int("cards", len(cardIDs)))
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// GetNote handles GET /notes/{id} requests.
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	noteID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	note, err := h.collection.GetNote(r.Context(), noteID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, noteToResponse(note))
}

// UpdateNoteRequest is the request body for updating a note. Only the
// named fields change; a non-nil tags list replaces the tag set.
type UpdateNoteRequest struct {
	Fields map[string]string `json:"fields"`
	Tags   []string          `json:"tags"`
}

// UpdateNote handles PATCH /notes/{id} requests.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	noteID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.collection.UpdateNote(r.Context(), noteID, req.Fields, req.Tags, time.Now()); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	note, err := h.collection.GetNote(r.Context(), noteID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, noteToResponse(note))
}
