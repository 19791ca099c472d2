// Package router sets up all HTTP routes and middleware chains for the
// Heritage PK site. Routes are organized into public, admin, and member
// API groups with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"heritagepk/internal/handlers"
	"heritagepk/internal/middleware"
	"heritagepk/internal/session"
	"heritagepk/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public, api *handlers.API) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", public.Health)

	// Embedded static assets for the admin interface.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Login attempts are rate limited per client IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Admin routes — session-cookie auth with CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Auth pages — accessible without a session.
		r.With(loginLimiter.Middleware).Get("/login", auth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		// Authenticated admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireAdmin)

			r.Get("/", admin.Dashboard)

			r.Route("/layouts", func(r chi.Router) {
				r.Get("/sections", admin.SectionsPage)
				r.Post("/sections/{id}", admin.SectionSave)

				r.Get("/templates", admin.TemplatesPage)
				r.Post("/templates", admin.TemplateSave)
				r.Get("/templates/{id}", admin.TemplateEditPage)
				r.Post("/templates/{id}/delete", admin.TemplateDelete)
			})

			r.Get("/home", admin.HomePage)
			r.Post("/home", admin.HomeSave)

			r.Get("/categories", admin.CategoriesPage)
			r.Post("/categories", admin.CategoryCreate)
			r.Post("/categories/{id}/delete", admin.CategoryDelete)

			r.Get("/icons", admin.IconsPage)
			r.Post("/icons", admin.IconUpsert)
			r.Post("/icons/{name}/delete", admin.IconDelete)

			r.Get("/media", admin.MediaLibrary)
			r.Post("/media", admin.MediaUpload)
			r.Post("/media/{id}/delete", admin.MediaDelete)
		})
	})

	// Member JSON API — session auth, JSON errors instead of redirects.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAPIAuth)

		r.Get("/profile", api.ProfileGet)
		r.Put("/profile", api.ProfileUpdate)
		r.Post("/profile/avatar", api.AvatarUpload)

		r.Get("/portfolio", api.PortfolioList)
		r.Post("/portfolio", api.PortfolioUpload)
		r.Post("/portfolio/reorder", api.PortfolioReorder)
		r.Delete("/portfolio/{id}", api.PortfolioDelete)

		r.Get("/sites/{siteID}/reviews", api.ReviewsList)
		r.Post("/sites/{siteID}/reviews", api.ReviewCreate)
		r.Post("/reviews/{id}/helpful", api.ReviewVoteHelpful)

		r.Get("/wishlist", api.WishlistGet)
		r.Put("/wishlist/{siteID}", api.WishlistAdd)
		r.Delete("/wishlist/{siteID}", api.WishlistRemove)

		r.Get("/trips", api.TripsList)
		r.Post("/trips", api.TripCreate)
		r.Get("/trips/{id}", api.TripGet)
		r.Put("/trips/{id}/stops", api.TripReplaceStops)
		r.Delete("/trips/{id}", api.TripDelete)

		r.Post("/citations/resolve", api.CitationsResolve)
	})

	// Public site.
	r.Get("/", public.Homepage)

	return r
}
