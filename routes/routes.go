package routes

import (
	"net/http"

	"github.com/antoniorme/minis-padel/handlers"
	"github.com/antoniorme/minis-padel/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers собирает все HTTP-обработчики приложения.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Tournament *handlers.TournamentHandler
	Pair       *handlers.PairHandler
	Match      *handlers.MatchHandler
	League     *handlers.LeagueHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, jwtSecret []byte, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Live-комнаты турниров
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.With(authenticate).Get("/me", h.Auth.Me)
	})

	router.Route("/players", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", h.Player.List)
		r.Post("/", h.Player.Create)
		r.Get("/ranking", h.Player.Ranking)
		r.Put("/{playerID}", h.Player.Update)
		r.Delete("/{playerID}", h.Player.Delete)
	})

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты: просмотр состояния и самостоятельная запись
		r.Get("/{tournamentID}", h.Tournament.Get)
		r.Get("/{tournamentID}/standings", h.Tournament.Standings)
		r.Post("/{tournamentID}/join", h.Pair.Join)

		// Защищенные маршруты только для организатора
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/", h.Tournament.List)
			r.Post("/", h.Tournament.Create)

			r.Put("/{tournamentID}", h.Tournament.Update)
			r.Delete("/{tournamentID}", h.Tournament.Delete)
			r.Post("/{tournamentID}/start", h.Tournament.Start)
			r.Post("/{tournamentID}/advance", h.Tournament.Advance)
			r.Post("/{tournamentID}/reset", h.Tournament.Reset)
			r.Post("/{tournamentID}/archive", h.Tournament.Archive)

			r.Get("/{tournamentID}/pairs", h.Pair.List)
			r.Post("/{tournamentID}/pairs", h.Pair.Create)
			r.Put("/{tournamentID}/pairs/{pairID}", h.Pair.Update)
			r.Delete("/{tournamentID}/pairs/{pairID}", h.Pair.Delete)
			r.Post("/{tournamentID}/pairs/{pairID}/partner", h.Pair.AssignPartner)
			r.Patch("/{tournamentID}/pairs/{pairID}/status", h.Pair.SetStatus)

			r.Post("/{tournamentID}/matches/{matchID}/score", h.Match.SubmitScore)
		})
	})

	router.Route("/leagues", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", h.League.List)
		r.Post("/", h.League.Create)
		r.Route("/{leagueID}", func(r chi.Router) {
			r.Get("/", h.League.Get)
			r.Post("/categories", h.League.AddCategory)
			r.Route("/categories/{categoryID}", func(r chi.Router) {
				r.Get("/", h.League.GetCategory)
				r.Post("/pairs", h.League.AddPair)
				r.Post("/groups", h.League.GenerateGroups)
				r.Post("/playoffs", h.League.StartPlayoffs)
				r.Post("/matches/{matchID}/score", h.League.SubmitScore)
			})
		})
	})
}
