package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mukhoplus/Masked-StarCraft/handlers"
	"github.com/mukhoplus/Masked-StarCraft/middleware"
	"github.com/mukhoplus/Masked-StarCraft/models"
)

// SetupRoutes wires the API surface. Three tiers: open endpoints, open
// endpoints that unmask for authenticated admins, and admin-only
// tournament operations.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	gameMapHandler *handlers.GameMapHandler,
	tournamentHandler *handlers.TournamentHandler,
	logHandler *handlers.LogHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/apply", authHandler.Apply)
			r.Post("/login", authHandler.Login)
		})

		// Public reads. A valid admin token lifts the mask.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuthenticate(jwtSecret))
			r.Get("/players", playerHandler.List)
			r.Get("/tournaments/current", tournamentHandler.Current)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Delete("/players", playerHandler.RetireAll)
			r.Delete("/players/{id}", playerHandler.Retire)

			r.Route("/maps", func(r chi.Router) {
				r.Get("/", gameMapHandler.List)
				r.Post("/", gameMapHandler.Create)
				r.Delete("/{id}", gameMapHandler.Retire)
			})

			r.Post("/tournaments/start", tournamentHandler.Start)
			r.Post("/games/result", tournamentHandler.RecordResult)

			r.Route("/logs/tournaments", func(r chi.Router) {
				r.Get("/", logHandler.List)
				r.Get("/{id}", logHandler.Get)
				r.Get("/{id}/download", logHandler.Download)
				r.Post("/{id}/archive", logHandler.Archive)
			})
		})
	})

	router.Get("/ws/tournament", webSocketHandler.ServeWs)
}
