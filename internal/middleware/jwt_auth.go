package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

type contextKey string

const ctxUserKey contextKey = "user"

// TokenValidator resolves a bearer token to the acting user.
type TokenValidator interface {
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

// JWTAuth authenticates requests by validating the Bearer token and
// loading the acting user into the request context. Every downstream
// operation takes the user from there explicitly; there is no other
// ambient request state.
func JWTAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}
			user, err := validator.UserFromToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromCtx returns the authenticated user or nil.
func UserFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxUserKey).(*models.User)
	return u
}

// WithUser returns a context carrying the given user. Used by tests.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
