package handler

import (
	"net/http"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/auth"
	"github.com/tasnim/travelmate/internal/service"
)

// ConnectHandler exposes the introduction-message endpoints.
type ConnectHandler struct {
	connects *service.ConnectService
}

func NewConnectHandler(connects *service.ConnectService) *ConnectHandler {
	return &ConnectHandler{connects: connects}
}

// Send handles POST /connects.
func (h *ConnectHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}

	var req struct {
		UserID  string `json:"userId"`
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.connects.SendMessage(r.Context(), identity.UserID, req.UserID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "message sent successfully", msg)
}

// List handles GET /connects.
func (h *ConnectHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}

	conns, err := h.connects.ListConnections(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "connections", conns)
}
