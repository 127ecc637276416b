package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/api/shared"
)

// getPathUUID extracts and parses a UUID path parameter. It writes a
// 400 response and returns false when the parameter is missing or
// malformed.
func getPathUUID(w http.ResponseWriter, r *http.Request, paramName string) (uuid.UUID, bool) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("%s is required", paramName))
		return uuid.Nil, false
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("invalid %s format", paramName))
		return uuid.Nil, false
	}
	return id, true
}

// parseIDList parses a list of UUID strings from a request body. A
// single malformed id rejects the whole list.
func parseIDList(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid card id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
