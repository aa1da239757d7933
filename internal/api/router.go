package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/calisthenix/engine/internal/api/handlers"
	mw "github.com/calisthenix/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret          []byte
	AuthHandler         *handlers.AuthHandler
	SkillsHandler       *handlers.SkillsHandler
	AchievementsHandler *handlers.AchievementsHandler
	ProgressHandler     *handlers.ProgressHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/docs/doc.json"),
	))

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			// Current user profile (scores, experience level)
			protected.Get("/me", dep.AuthHandler.Me)

			// Skill collection (read)
			protected.Get("/skills", dep.SkillsHandler.List)
			protected.Get("/skills/{id}", dep.SkillsHandler.Get)
			protected.Get("/skills/{id}/relationships", dep.SkillsHandler.Relationships)

			// Progress views
			protected.Get("/tree", dep.ProgressHandler.Tree)
			protected.Get("/progress", dep.ProgressHandler.Overview)
			protected.Get("/categories/totals", dep.ProgressHandler.CategoryTotals)

			// Achievement toggling (owning user only)
			protected.Route("/achievements", func(ach chi.Router) {
				ach.Get("/", dep.AchievementsHandler.List)
				ach.Post("/{skillID}", dep.AchievementsHandler.Achieve)
				ach.Delete("/{skillID}", dep.AchievementsHandler.Unachieve)
			})

			// Skill collection (write, admin only)
			protected.Group(func(admin chi.Router) {
				admin.Use(mw.RequireAdmin)
				admin.Post("/skills", dep.SkillsHandler.Create)
				admin.Put("/skills/{id}", dep.SkillsHandler.Update)
				admin.Delete("/skills/{id}", dep.SkillsHandler.Delete)
				admin.Delete("/skills", dep.SkillsHandler.DeleteAll)
				admin.Put("/skills/{id}/relationships", dep.SkillsHandler.SyncRelationships)
				admin.Get("/admin/skills/stats", dep.SkillsHandler.Stats)
			})
		})
	})

	return r
}
