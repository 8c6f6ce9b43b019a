package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/authgate/authgate/pkg/auth"
)

// Authenticate guards every request with the configured authenticator.
// Excluded paths pass straight through. A request with no resolvable
// user is rejected with 401; a collaborator failure is a 503, never a
// silent pass.
func Authenticate(authenticator auth.Authenticator, excluded []string, logger logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authenticator.RequiresAuth(r.URL.Path, excluded) {
				next.ServeHTTP(w, r)
				return
			}

			user, ok, err := authenticator.CurrentUser(r.Context(), r)
			if err != nil {
				logger.Error(err, "authentication backend failure", "path", r.URL.Path)
				writeError(w, http.StatusServiceUnavailable, "authentication unavailable")
				return
			}
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
