package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/authgate/authgate/pkg/auth"
	"github.com/authgate/authgate/pkg/identity"
)

// Handlers serves the login and logout endpoints for session-backed
// modes. CookieTTL controls the Max-Age of the issued cookie; zero
// produces a browser-session cookie.
type Handlers struct {
	Directory     identity.Directory
	Authenticator auth.Authenticator
	CookieName    string
	CookieTTL     time.Duration
	Logger        logr.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (h *Handlers) cookieName() string {
	if h.CookieName == "" {
		return auth.DefaultCookieName
	}
	return h.CookieName
}

// Login verifies the submitted credential and issues a session cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx := r.Context()

	user, found, err := h.Directory.FindUserByEmail(ctx, req.Email)
	if err != nil {
		h.Logger.Error(err, "user lookup failed")
		writeError(w, http.StatusServiceUnavailable, "authentication unavailable")
		return
	}
	if found {
		var verified bool
		verified, err = h.Directory.VerifyPassword(ctx, user, req.Password)
		if err != nil {
			h.Logger.Error(err, "password verification failed")
			writeError(w, http.StatusServiceUnavailable, "authentication unavailable")
			return
		}
		found = verified
	}
	if !found {
		// Unknown email and wrong password are indistinguishable.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sessionID, err := h.Authenticator.CreateSession(ctx, user.ID)
	if errors.Is(err, auth.ErrSessionsNotSupported) {
		writeError(w, http.StatusNotImplemented, "sessions are not supported in this mode")
		return
	}
	if err != nil {
		h.Logger.Error(err, "session creation failed")
		writeError(w, http.StatusServiceUnavailable, "authentication unavailable")
		return
	}

	http.SetCookie(w, h.sessionCookie(sessionID, h.CookieTTL))
	h.Logger.V(1).Info("session issued", "user_id", user.ID)
	writeJSON(w, http.StatusOK, loginResponse{UserID: user.ID, Email: user.Email})
}

// Logout destroys the presented session and expires the cookie. It is
// idempotent; a missing or unknown session is still a success.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	_, err := h.Authenticator.DestroySession(r.Context(), r)
	if errors.Is(err, auth.ErrSessionsNotSupported) {
		writeError(w, http.StatusNotImplemented, "sessions are not supported in this mode")
		return
	}
	if err != nil {
		h.Logger.Error(err, "session destruction failed")
		writeError(w, http.StatusServiceUnavailable, "authentication unavailable")
		return
	}

	expired := h.sessionCookie("", -time.Second)
	http.SetCookie(w, expired)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookieName(),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl != 0 {
		cookie.MaxAge = int(ttl / time.Second)
	}
	return cookie
}
