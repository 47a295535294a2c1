package routes

import (
	"net/http"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/handlers"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/go-chi/chi/v5"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Countries  *handlers.CatalogHandler[*models.Country, handlers.CreateCountryRequest, handlers.CountryResponse]
	Currencies *handlers.CatalogHandler[*models.Currency, handlers.CreateCurrencyRequest, handlers.CurrencyResponse]
	Products   *handlers.CatalogHandler[*models.Product, handlers.CreateProductRequest, handlers.ProductResponse]
	Reference  *handlers.ReferenceHandler
}

// RegisterRoutes registers all application routes. authLimit guards the
// credential endpoints; principals backs the admin role check.
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokenManager *auth.TokenManager,
	principals auth.PrincipalLookup,
	authLimit func(http.Handler) http.Handler,
) {
	requireAdmin := auth.RequireRole(principals, models.RoleAdmin)

	// Public routes - no authentication required
	h.Auth.RegisterPublicRoutes(router, authLimit)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokenManager))

		h.Auth.RegisterRoutes(r)
		h.Reference.RegisterRoutes(r)

		// Catalog reads for any principal, writes for admins
		h.Countries.RegisterRoutes(r, "/countries", requireAdmin)
		h.Currencies.RegisterRoutes(r, "/currencies", requireAdmin)
		h.Products.RegisterRoutes(r, "/products", requireAdmin)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			h.Users.RegisterRoutes(r)
		})
	})
}
