package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gatekeep/gatekeep/internal/platform/httpx"
	"github.com/gatekeep/gatekeep/internal/shared"
)

// Middleware guards routes with bearer session tokens.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireSession resolves the bearer token and stores the principal in the request context.
func (m Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Service.Resolve(r.Context(), BearerToken(r))
		if err != nil {
			httpx.RespondError(w, m.Logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), sess.Principal)))
	})
}

// RequireAdmin is RequireSession plus an admin role check on the current record.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := shared.PrincipalFromContext(r.Context())
		if !ok || !p.IsAdmin() {
			if m.Logger != nil {
				m.Logger.Warn("admin route denied", slog.Int64("user_id", p.UserID), slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, m.Logger, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
