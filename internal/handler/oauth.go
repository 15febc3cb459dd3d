package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/tasnim/travelmate/internal/auth"
	"github.com/tasnim/travelmate/internal/service"
)

// OAuthHandler drives the optional GitHub sign-in flow. It is only mounted
// when a client id/secret pair is configured.
type OAuthHandler struct {
	github *auth.GitHubProvider
	users  *service.UserService
	logger *slog.Logger
	isProd bool
}

func NewOAuthHandler(github *auth.GitHubProvider, users *service.UserService, logger *slog.Logger, isProd bool) *OAuthHandler {
	return &OAuthHandler{github: github, users: users, logger: logger, isProd: isProd}
}

// Login handles GET /auth/github/login: stash a random state in a
// short-lived cookie and send the browser to GitHub.
func (h *OAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProd,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/github/callback?code=&state=: verify the
// single-use state, exchange the code, sign the user in.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch or missing cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		// The user denied the authorization prompt.
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", slog.String("error", err.Error()))
		http.Error(w, "GitHub sign-in failed", http.StatusBadGateway)
		return
	}

	res, err := h.users.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    res.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProd,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(time.Hour),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /auth/logout by clearing the token cookie. With
// stateless JWTs there is nothing server-side to revoke.
func (h *OAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeData(w, http.StatusOK, "logged out", nil)
}
