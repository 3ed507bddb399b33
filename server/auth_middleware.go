package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/token"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyClaims stores parsed token claims
	ContextKeyClaims ContextKey = "claims"
)

const (
	msgNoToken      = "Unauthorized - No access token provided"
	msgTokenExpired = "Unauthorized - Access token expired"
	msgInvalidToken = "Unauthorized - Invalid access token"
	msgAdminOnly    = "Access denied - Admin only"
)

// RequireAuth validates the access token from the access token cookie or a
// Bearer Authorization header and stores its claims in the request context
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.verifier.Verify(s.accessToken(r))
			switch {
			case err == nil:
			case apperrors.Is(err, apperrors.ErrMissingToken):
				writeMessage(w, http.StatusUnauthorized, msgNoToken)
				return
			case apperrors.Is(err, apperrors.ErrTokenExpired):
				writeMessage(w, http.StatusUnauthorized, msgTokenExpired)
				return
			default:
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected access token")
				writeMessage(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin must run after RequireAuth
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.IsAdmin() {
				writeMessage(w, http.StatusForbidden, msgAdminOnly)
				return
			}
			next(w, r)
		}
	}
}

func ClaimsFromContext(ctx context.Context) (*token.AccessClaims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.AccessClaims)
	return claims, ok
}

func (s *Server) accessToken(r *http.Request) string {
	if cookie, err := r.Cookie(s.config.GetAccessTokenCookie()); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
