package handler

import (
	"net/http"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/auth"
	"github.com/tasnim/travelmate/internal/service"
)

// SearchHandler exposes the discovery endpoint.
type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles GET /search?destination=&startDate=&endDate=.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}

	q := r.URL.Query()
	start, end, err := parseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.search.Search(r.Context(), identity.UserID, q.Get("destination"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "matches found", result)
}
