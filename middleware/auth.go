package middleware

import (
	"context"
	"net/http"
	"shop-api/logger"
	"shop-api/response"
	"shop-api/services"
	"strings"

	"go.uber.org/zap"
)

// Key type for context
type contextKey string

const identityKey = contextKey("identity")

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Identity, error)
}

// WithIdentity returns a copy of ctx carrying the caller.
func WithIdentity(ctx context.Context, id *services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller attached by AuthMiddleware.
func IdentityFrom(ctx context.Context) (*services.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*services.Identity)
	return id, ok && id != nil
}

// AuthMiddleware verifies the bearer token and attaches the caller to the context.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if header := r.Header.Get("Authorization"); header != "" {
				scheme, value, ok := strings.Cut(header, " ")
				if !ok || !strings.EqualFold(scheme, "Bearer") {
					response.Fail(w, http.StatusUnauthorized, "Invalid Authorization header format")
					return
				}
				token = strings.TrimSpace(value)
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				response.Error(w, r, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("user_id", identity.UserID.Hex())))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware ensures that the user has admin privileges
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			response.Fail(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		if !identity.IsAdmin() {
			response.Fail(w, http.StatusForbidden, "Not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}
