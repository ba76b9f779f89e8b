package auth

import (
	"context"
	"fmt"
	"net/http"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityResolver turns a verified token subject into a full identity.
// The users store implements this.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, email string) (*models.Identity, error)
}

// Middleware verifies the bearer token, resolves the caller and attaches the
// identity to the request context. The cache is optional; a nil cache means
// every request hits the resolver.
func Middleware(issuer *TokenIssuer, resolver IdentityResolver, cache *IdentityCache, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			email, err := issuer.Verify(rawToken)
			if err != nil {
				log.LogSecurity("TOKEN_REJECTED", fmt.Sprintf("token verification failed: %v", err))
				http.Error(w, models.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}

			identity, err := cache.Get(r.Context(), rawToken)
			if err != nil {
				// Cache trouble is not fatal; fall through to the resolver.
				log.Warn("AUTH", fmt.Sprintf("identity cache lookup failed: %v", err))
			}

			if identity == nil {
				identity, err = resolver.ResolveIdentity(r.Context(), email)
				if err != nil {
					http.Error(w, models.ErrUnauthenticated.Error(), http.StatusUnauthorized)
					return
				}
				if err := cache.Set(r.Context(), rawToken, identity); err != nil {
					log.Warn("AUTH", fmt.Sprintf("identity cache store failed: %v", err))
				}
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerIdentity extracts the resolved caller from a request context.
func CallerIdentity(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*models.Identity)
	return identity, ok
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and by internal callers that bypass the HTTP layer.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
