package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/pinpoint/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	levels, sessions, broker := deps.Levels, deps.Sessions, deps.Broker

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Pinpoint API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks, map[string]health.Gauge{
		"sessions": sessions.Len,
	}).Routes())

	r.Get("/api/levels", handleListLevels(levels))
	r.Get("/api/levels/{levelID}", handleGetLevel(levels))

	r.Post("/api/sessions", handleCreateSession(logger, levels, sessions))
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Use(sessionMiddleware(sessions))
		r.Get("/", handleGetSession())
		r.Delete("/", handleDeleteSession(sessions, broker))
		r.Post("/guesses", handleGuess(broker))
		r.Post("/advance", handleAdvance(broker))
		r.Get("/events", handleEvents(broker))
	})
	r.With(sessionMiddleware(sessions)).Get("/ws/sessions/{sessionID}", handlePlayWS(logger, broker))

	r.Route("/api/admin/levels", func(r chi.Router) {
		r.Use(adminAuthMiddleware(deps.AdminPasswordHash))
		r.Get("/", handleListLevels(levels))
		r.Post("/", handleAdminCreateLevel(levels))
		r.Get("/{levelID}", handleAdminGetLevel(levels))
		r.Put("/{levelID}", handleAdminUpdateLevel(levels))
		r.Delete("/{levelID}", handleAdminDeleteLevel(levels))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
