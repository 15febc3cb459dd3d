package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/auth"
	"github.com/tasnim/travelmate/internal/repository"
	"github.com/tasnim/travelmate/internal/service"
)

// ItineraryHandler exposes the owner-scoped itinerary CRUD endpoints.
type ItineraryHandler struct {
	itineraries *service.ItineraryService
}

func NewItineraryHandler(itineraries *service.ItineraryService) *ItineraryHandler {
	return &ItineraryHandler{itineraries: itineraries}
}

// Create handles POST /itinerary.
func (h *ItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}

	var req struct {
		Destination   string   `json:"destination"`
		StartDate     string   `json:"startDate"`
		EndDate       string   `json:"endDate"`
		Accommodation string   `json:"accommodation"`
		Activities    []string `json:"activities"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	itin, err := h.itineraries.Create(r.Context(), identity.UserID, service.ItineraryInput{
		Destination:   req.Destination,
		StartDate:     start,
		EndDate:       end,
		Accommodation: req.Accommodation,
		Activities:    req.Activities,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "itinerary created successfully", itin)
}

// List handles GET /itinerary.
func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}

	itins, err := h.itineraries.List(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "itineraries", itins)
}

// Update handles PATCH /itinerary/{id}. Absent fields stay untouched;
// present fields are applied after the service re-checks the date
// invariant on the merged record.
func (h *ItineraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}
	id := chi.URLParam(r, "id")

	var req struct {
		Destination   *string   `json:"destination"`
		StartDate     *string   `json:"startDate"`
		EndDate       *string   `json:"endDate"`
		Accommodation *string   `json:"accommodation"`
		Activities    *[]string `json:"activities"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	upd := repository.ItineraryUpdate{
		Destination:   req.Destination,
		Accommodation: req.Accommodation,
		Activities:    req.Activities,
	}
	if req.StartDate != nil {
		start, err := service.ParseDate("startDate", *req.StartDate)
		if err != nil {
			writeError(w, err)
			return
		}
		upd.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := service.ParseDate("endDate", *req.EndDate)
		if err != nil {
			writeError(w, err)
			return
		}
		upd.EndDate = &end
	}

	itin, err := h.itineraries.Update(r.Context(), identity.UserID, id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "itinerary updated successfully", itin)
}

// Delete handles DELETE /itinerary/{id}.
func (h *ItineraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.itineraries.Delete(r.Context(), identity.UserID, id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "itinerary deleted successfully", nil)
}

// parseDateRange parses both wire dates; both are required here, the
// start<=end comparison belongs to the service.
func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, apperror.ValidationFailed("", "startDate and endDate are required")
	}
	start, err := service.ParseDate("startDate", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := service.ParseDate("endDate", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
