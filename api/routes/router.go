package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storegrid/storegrid-backend/api/controllers"
	"github.com/storegrid/storegrid-backend/api/middleware"
	"github.com/storegrid/storegrid-backend/pkg/config"
	"github.com/storegrid/storegrid-backend/pkg/enums"
	"github.com/storegrid/storegrid-backend/pkg/logger"
	"github.com/storegrid/storegrid-backend/pkg/metrics"
)

// Dependencies carries everything the router wires together.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.HTTP
	Sessions middleware.SessionChecker
	Roles    middleware.RoleResolver
	Rates    middleware.RateLimitStore

	Health      *controllers.HealthController
	Auth        *controllers.AuthController
	Stores      *controllers.StoresController
	Memberships *controllers.MembershipsController
	Categories  *controllers.CategoriesController
	Products    *controllers.ProductsController
	Cart        *controllers.CartController
	Orders      *controllers.OrdersController
}

// New assembles the HTTP routing tree.
//
// Everything under /api/v1/stores/{storeID} passes through the role guard;
// the per-route guard variants encode which roles may hit which operations.
func New(deps Dependencies) http.Handler {
	logg := deps.Logger

	router := chi.NewRouter()
	router.Use(middleware.Recoverer(logg))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(logg))
	router.Use(deps.Metrics.Middleware)
	router.Use(middleware.CORS(deps.Config.CORS))

	router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	router.Get("/health/live", deps.Health.Live)
	router.Get("/health/ready", deps.Health.Ready)

	authenticate := middleware.Authenticate(deps.Config.JWT, deps.Sessions, logg)

	anyMember := middleware.RequireStoreRoles(deps.Roles, logg,
		enums.MemberRoleOwner, enums.MemberRoleAdmin, enums.MemberRoleCashier)
	ownerOrAdmin := middleware.RequireStoreRoles(deps.Roles, logg,
		enums.MemberRoleOwner, enums.MemberRoleAdmin)
	ownerOnly := middleware.RequireStoreRoles(deps.Roles, logg,
		enums.MemberRoleOwner)
	adminOnly := middleware.RequireStoreRoles(deps.Roles, logg,
		enums.MemberRoleAdmin)

	authLimit := middleware.AuthRateLimit(middleware.AuthRatePolicy{
		Name:       "auth",
		Window:     deps.Config.RateLimit.AuthWindow,
		IPLimit:    deps.Config.RateLimit.AuthIPLimit,
		EmailLimit: deps.Config.RateLimit.AuthEmailLimit,
	}, deps.Rates, logg)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit).Post("/register", deps.Auth.Register)
			r.With(authLimit).Post("/login", deps.Auth.Login)
			r.With(authLimit).Post("/refresh", deps.Auth.Refresh)
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/logout", deps.Auth.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/stores", func(r chi.Router) {
				r.Post("/", deps.Stores.Create)
				r.Get("/", deps.Stores.ListMine)

				r.Route("/{storeID}", func(r chi.Router) {
					r.With(anyMember).Get("/", deps.Stores.Get)
					r.With(ownerOnly).Put("/", deps.Stores.Update)
					r.With(ownerOnly).Delete("/", deps.Stores.Delete)

					r.Route("/members", func(r chi.Router) {
						r.Use(ownerOrAdmin)
						r.Get("/", deps.Memberships.List)
						r.Post("/", deps.Memberships.Invite)
						r.Put("/{userID}", deps.Memberships.UpdateRole)
						r.Delete("/{userID}", deps.Memberships.Remove)
					})

					r.Route("/categories", func(r chi.Router) {
						r.With(ownerOrAdmin).Post("/", deps.Categories.Create)
						r.With(ownerOrAdmin).Get("/", deps.Categories.List)
						r.With(anyMember).Get("/{categoryID}", deps.Categories.Get)
						r.With(adminOnly).Put("/{categoryID}", deps.Categories.Update)
						r.With(adminOnly).Delete("/{categoryID}", deps.Categories.Delete)
					})

					r.Route("/products", func(r chi.Router) {
						r.With(anyMember).Get("/", deps.Products.List)
						r.With(anyMember).Get("/sku/{sku}", deps.Products.GetBySKU)
						r.With(anyMember).Get("/{productID}", deps.Products.Get)
						r.With(ownerOrAdmin).Post("/", deps.Products.Create)
						r.With(ownerOrAdmin).Put("/{productID}", deps.Products.Update)
						r.With(ownerOrAdmin).Delete("/{productID}", deps.Products.Delete)
					})

					r.Route("/cart", func(r chi.Router) {
						r.Use(anyMember)
						r.Get("/", deps.Cart.List)
						r.Post("/items", deps.Cart.AddItem)
						r.Put("/items/{itemID}", deps.Cart.UpdateItem)
						r.Delete("/items/{itemID}", deps.Cart.RemoveItem)
					})

					r.Route("/orders", func(r chi.Router) {
						r.Use(anyMember)
						r.Post("/", deps.Orders.Create)
						r.Get("/", deps.Orders.List)
						r.Get("/{orderID}", deps.Orders.Get)
					})
				})
			})
		})
	})

	return router
}
