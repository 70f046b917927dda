package middleware

import (
	"encoding/json"
	"net/http"

	"famgrocer/internal/auth"
	"famgrocer/internal/store"
)

// SessionCookieName is the browser cookie carrying the session token.
const SessionCookieName = "famgrocer_session"

// RequireAuth validates the session cookie and populates AuthContext.
// The API is JSON-only, so failures get a 401 body rather than a
// redirect.
func RequireAuth(sessions *store.SessionStore, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			user, err := users.GetByUID(sess.UserUID)
			if err != nil || user == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserUID:   user.UID,
				Name:      user.Name,
				SessionID: sess.ID,
			}
			if user.FamilyCode != nil {
				ac.FamilyCode = *user.FamilyCode
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireFamily checks that the authenticated member belongs to a
// family. Shared-list routes are meaningless without one.
func RequireFamily(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FamilyCode(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "family membership required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
