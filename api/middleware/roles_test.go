package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/enums"
	"github.com/storegrid/storegrid-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	roles map[uuid.UUID]enums.MemberRole
}

func (s stubResolver) ResolveRole(_ context.Context, userID, _ uuid.UUID) (enums.MemberRole, error) {
	return s.roles[userID], nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "middleware-test", Output: io.Discard})
}

func newRolesRouter(resolver RoleResolver, userID uuid.UUID, allowed ...enums.MemberRole) http.Handler {
	logg := testLogger()

	seedUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID != uuid.Nil {
				ctx = WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	router := chi.NewRouter()
	router.Use(seedUser)
	router.Route("/stores/{storeID}/products", func(r chi.Router) {
		r.Use(RequireStoreRoles(resolver, logg, allowed...))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			storeID, ok := StoreIDFromContext(r.Context())
			if !ok {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(storeID.String()))
		})
	})
	router.Route("/stores", func(r chi.Router) {
		r.Use(RequireStoreRoles(resolver, logg, allowed...))
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("ok"))
		})
	})
	return router
}

func TestRequireStoreRolesAllowsMember(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	resolver := stubResolver{roles: map[uuid.UUID]enums.MemberRole{userID: enums.MemberRoleAdmin}}

	router := newRolesRouter(resolver, userID, enums.MemberRoleOwner, enums.MemberRoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/"+storeID.String()+"/products/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storeID.String(), rec.Body.String())
}

func TestRequireStoreRolesRejectsWrongRole(t *testing.T) {
	userID := uuid.New()
	resolver := stubResolver{roles: map[uuid.UUID]enums.MemberRole{userID: enums.MemberRoleCashier}}

	router := newRolesRouter(resolver, userID, enums.MemberRoleOwner, enums.MemberRoleAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/"+uuid.NewString()+"/products/", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
}

func TestRequireStoreRolesRejectsNonMember(t *testing.T) {
	userID := uuid.New()
	resolver := stubResolver{roles: map[uuid.UUID]enums.MemberRole{}}

	router := newRolesRouter(resolver, userID, enums.MemberRoleOwner, enums.MemberRoleAdmin, enums.MemberRoleCashier)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/"+uuid.NewString()+"/products/", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireStoreRolesRequiresAuthentication(t *testing.T) {
	resolver := stubResolver{roles: map[uuid.UUID]enums.MemberRole{}}

	router := newRolesRouter(resolver, uuid.Nil, enums.MemberRoleOwner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/"+uuid.NewString()+"/products/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireStoreRolesPassesWithoutStoreParam(t *testing.T) {
	resolver := stubResolver{roles: map[uuid.UUID]enums.MemberRole{}}

	router := newRolesRouter(resolver, uuid.Nil, enums.MemberRoleOwner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequireStoreRolesEmptySetOnlyRequiresAuth(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	resolver := stubResolver{roles: map[uuid.UUID]enums.MemberRole{}}

	router := newRolesRouter(resolver, userID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/"+storeID.String()+"/products/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storeID.String(), rec.Body.String())

	rec = httptest.NewRecorder()
	anon := newRolesRouter(resolver, uuid.Nil)
	anon.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/"+storeID.String()+"/products/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireStoreRolesRejectsMalformedStoreID(t *testing.T) {
	userID := uuid.New()
	resolver := stubResolver{roles: map[uuid.UUID]enums.MemberRole{userID: enums.MemberRoleOwner}}

	router := newRolesRouter(resolver, userID, enums.MemberRoleOwner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/not-a-uuid/products/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
