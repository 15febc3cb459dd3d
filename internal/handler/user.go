package handler

import (
	"net/http"
	"time"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/auth"
	"github.com/tasnim/travelmate/internal/service"
)

// UserHandler exposes registration, login, the caller's own account and
// the password-reset endpoints.
type UserHandler struct {
	users  *service.UserService
	isProd bool
}

func NewUserHandler(users *service.UserService, isProd bool) *UserHandler {
	return &UserHandler{users: users, isProd: isProd}
}

// userSummary is the slimmed account shape returned by auth endpoints.
type userSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type authPayload struct {
	User  userSummary `json:"user"`
	Token string      `json:"token"`
}

func newAuthPayload(res *service.AuthResult) authPayload {
	return authPayload{
		User: userSummary{
			ID:      res.User.ID,
			Name:    res.User.Name,
			Email:   res.User.Email,
			IsAdmin: res.User.IsAdmin,
		},
		Token: res.Token,
	}
}

// setTokenCookie mirrors the token into an HttpOnly cookie, so browser
// clients work without storing the JWT in script-readable storage. API
// clients keep using the Authorization header.
func (h *UserHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProd,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(time.Hour),
	})
}

// Register handles POST /user.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string   `json:"name"`
		Email           string   `json:"email"`
		Password        string   `json:"password"`
		Status          string   `json:"status"`
		Location        string   `json:"location"`
		ProfilePicURL   string   `json:"profilePicUrl"`
		TravelPrefs     []string `json:"travelPreferencesAndGoals"`
		SocialMediaLink string   `json:"socialMediaLink"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.users.Register(r.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Status:          req.Status,
		Location:        req.Location,
		ProfilePicURL:   req.ProfilePicURL,
		TravelPrefs:     req.TravelPrefs,
		SocialMediaLink: req.SocialMediaLink,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeData(w, http.StatusCreated, "user registered successfully", newAuthPayload(res))
}

// Login handles POST /user/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeData(w, http.StatusOK, "login successful", newAuthPayload(res))
}

// Me handles GET /user/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}

	user, err := h.users.Me(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "user details", userSummary{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
}

// Delete handles DELETE /user: the caller removes their own account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorised"))
		return
	}

	if err := h.users.Delete(r.Context(), identity.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "user deleted successfully", nil)
}

// ListUsers handles GET /admin/users. The admin gate is middleware; the
// password hash never serializes thanks to the model's json tags.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "all users", users)
}

// ForgotPassword handles POST /user/forgot-password.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "password reset email sent", nil)
}

// ResetPassword handles POST /user/reset-password.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "password reset successfully", nil)
}
