package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-finance-tracker/internal/config"
	"go-finance-tracker/internal/database"
	"go-finance-tracker/internal/handler"
	"go-finance-tracker/internal/middleware"
	"go-finance-tracker/internal/model"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Record *handler.RecordHandler
}

func New(cfg *config.Config, db *database.DB, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := db.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(model.HealthResponse{OK: false})
				return
			}
			_ = json.NewEncoder(w).Encode(model.HealthResponse{OK: true})
		})

		api.Post("/register", h.Auth.Register)
		api.Post("/login", h.Auth.Login)
		api.Post("/refresh", h.Auth.Refresh)
		api.With(authMiddleware.RequireAuth).Post("/logout", h.Auth.Logout)
		api.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)

		api.With(authMiddleware.RequireAuth).Get("/categories", h.Record.Categories)
		api.With(authMiddleware.RequireAuth).Post("/records", h.Record.Create)
		api.With(authMiddleware.RequireAuth).Get("/records", h.Record.List)
		api.With(authMiddleware.RequireAuth).Delete("/records/{id}", h.Record.Delete)
		api.With(authMiddleware.RequireAuth).Get("/summary", h.Record.Summary)
	})

	return r
}
