package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/FedericoSorianox/TorneoBJJ/handlers"
	"github.com/FedericoSorianox/TorneoBJJ/middleware"
	"github.com/FedericoSorianox/TorneoBJJ/models"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Athlete    *handlers.AthleteHandler
	Tournament *handlers.TournamentHandler
	Category   *handlers.CategoryHandler
	Match      *handlers.MatchHandler
	RuleSet    *handlers.RuleSetHandler
	WebSocket  *handlers.WebSocketHandler
}

// SetupRoutes wires the HTTP surface: public reads, staff-guarded writes and
// the live match WebSocket endpoint.
func SetupRoutes(h Handlers, auth *middleware.Authenticator, clientURL string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{clientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Route("/athletes", func(r chi.Router) {
			r.Get("/", h.Athlete.List)
			r.Get("/leaderboard", h.Athlete.Leaderboard)
			r.Get("/{id}", h.Athlete.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(middleware.Authorize(models.RoleAdmin, models.RoleStaff))
				r.Post("/", h.Athlete.Create)
				r.Put("/{id}", h.Athlete.Update)
				r.Post("/{id}/photo", h.Athlete.UploadPhoto)
			})
			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(middleware.Authorize(models.RoleAdmin))
				r.Delete("/{id}", h.Athlete.Delete)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.List)
			r.Get("/{id}", h.Tournament.Get)
			r.Get("/{id}/categories", h.Category.ListByTournament)
			r.Get("/{id}/matches", h.Tournament.ListMatches)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(middleware.Authorize(models.RoleAdmin))
				r.Post("/", h.Tournament.Create)
				r.Put("/{id}", h.Tournament.Update)
				r.Delete("/{id}", h.Tournament.Delete)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/{id}", h.Category.Get)
			r.Get("/{id}/bracket", h.Category.GetBracket)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(middleware.Authorize(models.RoleAdmin, models.RoleStaff))
				r.Post("/", h.Category.Create)
				r.Post("/{id}/athletes", h.Category.Enroll)
				r.Post("/{id}/bracket", h.Category.GenerateBracket)
			})
			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(middleware.Authorize(models.RoleAdmin))
				r.Delete("/{id}", h.Category.Delete)
			})
		})

		r.Route("/rulesets", func(r chi.Router) {
			r.Get("/", h.RuleSet.List)
			r.Get("/{id}", h.RuleSet.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(middleware.Authorize(models.RoleAdmin))
				r.Post("/", h.RuleSet.Create)
			})
		})

		r.Get("/matches/{id}", h.Match.Get)
	})

	router.Get("/ws/matches/{matchID}", h.WebSocket.ServeMatch)

	return router
}
