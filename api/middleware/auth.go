package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/cableflow/cableflow-backend/api/responses"
	"github.com/cableflow/cableflow-backend/api/validators"
	"github.com/cableflow/cableflow-backend/internal/users"
	pkgAuth "github.com/cableflow/cableflow-backend/pkg/auth"
	"github.com/cableflow/cableflow-backend/pkg/config"
	"github.com/cableflow/cableflow-backend/pkg/db/models"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/logger"
	"github.com/cableflow/cableflow-backend/pkg/redis"
)

// UserResolver maps verified token claims to a local user row.
type UserResolver interface {
	Resolve(ctx context.Context, identity users.Identity) (*models.User, error)
}

// Auth validates a bearer token, rejects revoked token ids and seeds the
// request context with the resolved user.
func Auth(cfg config.JWTConfig, revoked redis.RevocationStore, resolver UserResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if revoked != nil && claims.ID != "" {
				gone, err := revoked.IsTokenRevoked(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if gone {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session ended"))
					return
				}
			}

			user, err := resolver.Resolve(r.Context(), users.Identity{
				Subject:   claims.Subject,
				Email:     claims.Email,
				FirstName: claims.FirstName,
				LastName:  claims.LastName,
				Role:      claims.EffectiveRole(),
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			var until time.Time
			if claims.ExpiresAt != nil {
				until = claims.ExpiresAt.Time
			}
			ctx := WithUser(r.Context(), user.ID, user.Role, user.Email)
			ctx = withToken(ctx, claims.ID, until)

			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID.String())
				ctx = logg.WithRole(ctx, string(user.Role))
				publishLogContext(ctx)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
