package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{ name string }

var sessionCtxKey = contextKey{"session"}

// SessionFromContext returns the authenticated session, if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionCtxKey).(*Session)
	return session, ok
}

func tokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.Header.Get("X-Auth-Token")
}

// RequireAuth rejects requests without a valid session token.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		session, err := s.Verify(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey, session)))
	})
}

// RequireAdmin rejects requests whose session does not carry the admin role.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFromContext(r.Context())
		if session == nil || session.Role != RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
