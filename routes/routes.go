package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hoopshq/madness-pool/handlers"
	"github.com/hoopshq/madness-pool/middleware"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournament  *handlers.TournamentHandler
	Team        *handlers.TeamHandler
	Match       *handlers.MatchHandler
	Participant *handlers.ParticipantHandler
	Transition  *handlers.TransitionHandler
	WebSocket   *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, jwtSecret, internalAPIKey string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Entry-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", h.Auth.Login)

	// Public read side plus self-service participant routes.
	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/current", h.Tournament.GetCurrent)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.GetByID)
			r.Get("/teams", h.Team.ListByTournament)
			r.Get("/matches", h.Match.ListByTournament)
			r.Get("/leaderboard", h.Participant.Leaderboard)
			r.Get("/transition", h.Transition.Get)
			r.Post("/participants", h.Participant.Register)
			r.Get("/participants/{participantID}/picks", h.Participant.PublicPicks)
		})
	})

	// Participant self-service, authenticated by the entry token header.
	router.Route("/me", func(r chi.Router) {
		r.Get("/", h.Participant.Me)
		r.Get("/picks", h.Participant.MyPicks)
		r.Post("/picks/match", h.Participant.SubmitMatchPick)
		r.Post("/picks/pre-tournament", h.Participant.SubmitPreTournamentPick)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.Subscribe)

	// Admin surface.
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(jwtSecret)))
		r.Use(middleware.RequireAdmin)

		r.Post("/tournaments", h.Tournament.Create)
		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Patch("/", h.Tournament.Update)
			r.Delete("/", h.Tournament.Delete)
			r.Post("/teams", h.Team.SeedRegion)
			r.Get("/participants", h.Participant.ListByTournament)
			r.Post("/rescore", h.Tournament.Rescore)
			r.Post("/matches/generate", h.Match.GenerateNextRound)

			r.Post("/transition", h.Transition.Schedule)
			r.Delete("/transition", h.Transition.Cancel)
			r.Post("/advance", h.Transition.Advance)
		})
		r.Patch("/matches/{matchID}/result", h.Match.RecordResult)
		r.Post("/teams/{teamID}/logo", h.Team.UploadLogo)
		r.Patch("/participants/{participantID}/paid", h.Participant.SetPaid)
	})

	// Poller trigger for an external cron; idempotent and safe to repeat,
	// but still gated behind the shared internal key.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireInternalKey(internalAPIKey))
		r.Post("/internal/transitions/process", h.Transition.ProcessDue)
	})

	return router
}
