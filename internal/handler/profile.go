package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/auth"
	"github.com/tasnim/travelmate/internal/repository"
	"github.com/tasnim/travelmate/internal/service"
)

// ProfileHandler exposes the composed profile view and profile edits.
type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /profile/{id}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}

	view, err := h.profiles.GetProfile(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "profile", view)
}

// Update handles PATCH /profile/{id}. The service enforces that only the
// owner can edit, so the handler just relays both ids.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}

	var req struct {
		Name            *string   `json:"name"`
		Location        *string   `json:"location"`
		Status          *string   `json:"status"`
		ProfilePicURL   *string   `json:"profilePicUrl"`
		TravelPrefs     *[]string `json:"travelPreferencesAndGoals"`
		SocialMediaLink *string   `json:"socialMediaLink"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.profiles.UpdateProfile(r.Context(), identity.UserID, chi.URLParam(r, "id"), repository.ProfileUpdate{
		Name:            req.Name,
		Location:        req.Location,
		Status:          req.Status,
		ProfilePicURL:   req.ProfilePicURL,
		TravelPrefs:     req.TravelPrefs,
		SocialMediaLink: req.SocialMediaLink,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "profile updated successfully", user)
}
