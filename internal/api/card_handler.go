// Package api provides HTTP handlers for the API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/api/shared"
	"github.com/rotekit/rote/internal/platform/logger"
	"github.com/rotekit/rote/internal/service/collection"
	"github.com/rotekit/rote/internal/srs"
)

// CardHandler handles card-related HTTP requests.
type CardHandler struct {
	collection *collection.Service
	logger     *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(svc *collection.Service, logger *slog.Logger) *CardHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("collection service cannot be nil for CardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		collection: svc,
		logger:     logger.With(slog.String("component", "card_handler")),
	}
}

// GetCard handles GET /cards/{id} requests.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.collection.GetCard(r.Context(), cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// AnswerRequest is the request body for answering a card.
type AnswerRequest struct {
	Rating string `json:"rating" validate:"required,oneof=again hard good easy"`
}

// Answer handles POST /cards/{id}/answer requests. It submits a rating
// and returns the card's next scheduling state.
func (h *CardHandler) Answer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.collection.AnswerCard(r.Context(), cardID, srs.Rating(req.Rating), time.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("card answered",
		slog.String("card_id", cardID.String()),
		slog.String("rating", req.Rating),
		slog.String("state", string(card.State)))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// ScheduleRequest is the request body for setting a card's due date.
// Due accepts "+Nd" for N days from today or an absolute "YYYY-MM-DD".
type ScheduleRequest struct {
	Due string `json:"due" validate:"required"`
}

// Schedule handles POST /cards/{id}/schedule requests.
func (h *CardHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	cardID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ScheduleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.collection.Reschedule(r.Context(), cardID, req.Due, time.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// BatchRequest is the request body for batch card state operations.
type BatchRequest struct {
	CardIDs []string `json:"card_ids" validate:"required,min=1"`
}

// Bury handles POST /cards/bury requests.
func (h *CardHandler) Bury(w http.ResponseWriter, r *http.Request) {
	h.batchOp(w, r, h.collection.Bury)
}

// Suspend handles POST /cards/suspend requests.
func (h *CardHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.batchOp(w, r, h.collection.Suspend)
}

// Restore handles POST /cards/restore requests. It clears both the
// suspended and buried overlays.
func (h *CardHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.batchOp(w, r, h.collection.Restore)
}

// Forget handles POST /cards/forget requests. Affected cards return to
// the new queue with their scheduling history reset.
func (h *CardHandler) Forget(w http.ResponseWriter, r *http.Request) {
	h.batchOp(w, r, h.collection.Forget)
}

// batchOp decodes a BatchRequest and applies an all-or-nothing batch
// operation, responding with the number of cards changed.
func (h *CardHandler) batchOp(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, ids []uuid.UUID, now time.Time) (int64, error),
) {
	var req BatchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	ids, err := parseIDList(req.CardIDs)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	affected, err := op(r.Context(), ids, time.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AffectedResponse{Affected: affected})
}

// FlagRequest is the request body for setting a flag on a batch of
// cards. Flag 0 clears it.
type FlagRequest struct {
	CardIDs []string `json:"card_ids" validate:"required,min=1"`
	Flag    int      `json:"flag"    validate:"gte=0,lte=7"`
}

// SetFlag handles POST /cards/flag requests.
func (h *CardHandler) SetFlag(w http.ResponseWriter, r *http.Request) {
	var req FlagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	ids, err := parseIDList(req.CardIDs)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	affected, err := h.collection.SetFlag(r.Context(), ids, req.Flag, time.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AffectedResponse{Affected: affected})
}

// MoveRequest is the request body for moving cards into another deck.
type MoveRequest struct {
	CardIDs []string `json:"card_ids" validate:"required,min=1"`
	DeckID  string   `json:"deck_id"  validate:"required,uuid"`
}

// Move handles POST /cards/move requests.
func (h *CardHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	ids, err := parseIDList(req.CardIDs)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	deckID, err := uuid.Parse(req.DeckID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid deck_id format")
		return
	}

	affected, err := h.collection.MoveDeck(r.Context(), ids, deckID, time.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AffectedResponse{Affected: affected})
}

// Delete handles POST /cards/delete requests. Notes left without any
// cards are removed along with them.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req BatchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	ids, err := parseIDList(req.CardIDs)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	affected, err := h.collection.DeleteCards(r.Context(), ids)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("cards deleted", slog.Int64("count", affected))
	shared.RespondWithJSON(w, r, http.StatusOK, AffectedResponse{Affected: affected})
}
