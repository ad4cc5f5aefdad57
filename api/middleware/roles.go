package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/api/responses"
	"github.com/storegrid/storegrid-backend/pkg/enums"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/logger"
)

// RoleResolver looks up a user's role in a store. An empty role with a nil
// error means the user is not a member.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID, storeID uuid.UUID) (enums.MemberRole, error)
}

// RequireStoreRoles authorizes requests against the {storeID} route parameter.
// Requests without a storeID parameter pass through untouched. Otherwise the
// caller must be authenticated and hold one of the allowed roles in that
// store; non-members and members with the wrong role both get FORBIDDEN. An
// empty allowed set only requires an authenticated caller.
func RequireStoreRoles(resolver RoleResolver, logg *logger.Logger, allowed ...enums.MemberRole) func(http.Handler) http.Handler {
	allowedSet := make(map[enums.MemberRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := chi.URLParam(r, "storeID")
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			storeID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "storeID must be a valid UUID"))
				return
			}

			userID, ok := UserIDFromContext(ctx)
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}

			if len(allowedSet) > 0 {
				role, err := resolver.ResolveRole(ctx, userID, storeID)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving membership"))
					return
				}
				if _, ok := allowedSet[role]; role == "" || !ok {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "you do not have access to this store"))
					return
				}
			}

			ctx = WithStoreID(ctx, storeID)
			ctx = logg.WithStoreID(ctx, storeID.String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
