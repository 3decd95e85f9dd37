// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielhkuo/featureboard/cliparse"
	"github.com/danielhkuo/featureboard/handlers"
	"github.com/danielhkuo/featureboard/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *chi.Mux {
	r := chi.NewRouter()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	boardHandler := handlers.NewBoardHandler(db, cfg)
	featureHandler := handlers.NewFeatureHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)
	commentHandler := handlers.NewCommentHandler(db, cfg)
	dashboardHandler := handlers.NewDashboardHandler(db, cfg)

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.WithSession(authHandler.ResolveSession))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", middleware.WithLogging(authHandler.Register))
		r.Post("/login", middleware.WithLogging(authHandler.Login))
		r.Post("/logout", middleware.WithLogging(authHandler.Logout))
		r.Get("/me", middleware.WithLogging(middleware.RequireSession(authHandler.Me)))
	})

	// Boards (owner operations require a session)
	r.Route("/boards", func(r chi.Router) {
		r.Post("/", middleware.WithLogging(middleware.RequireSession(boardHandler.CreateBoard)))
		r.Get("/", middleware.WithLogging(middleware.RequireSession(boardHandler.ListBoards)))

		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", middleware.WithLogging(boardHandler.GetBoard))
			r.Patch("/", middleware.WithLogging(middleware.RequireSession(boardHandler.UpdateBoard)))
			r.Delete("/", middleware.WithLogging(middleware.RequireSession(boardHandler.DeleteBoard)))

			// Features (public submission and voting)
			r.Post("/features", middleware.WithLogging(featureHandler.CreateFeature))
			r.Get("/features", middleware.WithLogging(featureHandler.ListFeatures))

			r.Route("/features/{id}", func(r chi.Router) {
				r.Get("/", middleware.WithLogging(featureHandler.GetFeature))
				r.Patch("/", middleware.WithLogging(middleware.RequireSession(featureHandler.UpdateFeature)))
				r.Delete("/", middleware.WithLogging(middleware.RequireSession(featureHandler.DeleteFeature)))

				r.Post("/vote", middleware.WithLogging(voteHandler.Vote))
				r.Post("/comments", middleware.WithLogging(commentHandler.CreateComment))
				r.Get("/comments", middleware.WithLogging(commentHandler.ListComments))
			})
		})
	})

	// Owner views
	r.Get("/features", middleware.WithLogging(middleware.RequireSession(featureHandler.ListOwnerFeatures)))
	r.Get("/dashboard", middleware.WithLogging(middleware.RequireSession(dashboardHandler.GetDashboard)))

	// Root endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("featureboard API v1"))
	})

	return r
}
