package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/storegrid/storegrid-backend/api/responses"
	pkgauth "github.com/storegrid/storegrid-backend/pkg/auth"
	"github.com/storegrid/storegrid-backend/pkg/config"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// SessionChecker reports whether an access session is still live in the
// session store.
type SessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Authenticate verifies the bearer token and confirms its session has not
// been revoked, then seeds the request context with the user's identity.
func Authenticate(jwtConfig config.JWTConfig, sessions SessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, err := bearerToken(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			claims, err := pkgauth.ParseAccessToken(jwtConfig, token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid or expired token"))
				return
			}

			live, err := sessions.HasSession(ctx, claims.ID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking session"))
				return
			}
			if !live {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
				return
			}

			ctx = WithUserID(ctx, claims.UserID)
			ctx = WithAccessID(ctx, claims.ID)
			ctx = logg.WithUserID(ctx, claims.UserID.String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authorization header must be a bearer token")
	}
	return strings.TrimSpace(parts[1]), nil
}
