package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ligadelmazo/backend/handlers"
	"github.com/ligadelmazo/backend/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Match     *handlers.MatchHandler
	Deck      *handlers.DeckHandler
	Stats     *handlers.StatsHandler
	News      *handlers.NewsHandler
	Rule      *handlers.RuleHandler
	Migration *handlers.MigrationHandler
	WebSocket *handlers.WebSocketHandler
}

func Setup(h Handlers, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	r.Route("/partidas", func(r chi.Router) {
		r.Get("/", h.Match.List)
		r.Get("/{id}", h.Match.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/registrar", h.Match.SelfReport)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middleware.RequireAdmin)
			r.Post("/", h.Match.Create)
			r.Get("/pendientes", h.Match.ListPending)
			r.Put("/{id}/aprobar", h.Match.Approve)
			r.Put("/{id}/rechazar", h.Match.Reject)
			r.Delete("/{id}", h.Match.Delete)
		})
	})

	r.Route("/mazos", func(r chi.Router) {
		r.Get("/", h.Deck.List)
		r.Get("/series", h.Deck.ListSeries)
		r.Get("/series/all", h.Deck.ListGroupedBySeries)
		r.Get("/{id}", h.Deck.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middleware.RequireAdmin)
			r.Post("/", h.Deck.Create)
			r.Put("/{id}", h.Deck.Update)
			r.Post("/{id}/imagen", h.Deck.UploadImage)
			r.Delete("/{id}", h.Deck.Delete)
		})
	})

	r.Route("/estadisticas", func(r chi.Router) {
		r.Get("/jugadores", h.Stats.PlayerRanking)
		r.Get("/jugadores/filtrado", h.Stats.PlayersFiltered)
		r.Get("/jugadores/{id}", h.Stats.PlayerDetail)
		r.Get("/mazos", h.Stats.DeckRanking)
		r.Get("/mazos/filtrado", h.Stats.DecksFiltered)
		r.Get("/mazos/{id}", h.Stats.DeckDetail)
		r.Get("/comparar/mazos/{id1}/{id2}", h.Stats.CompareDecks)
		r.Get("/comparar/jugadores/{id1}/{id2}", h.Stats.ComparePlayers)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/usuarios/list", h.Stats.ListUsers)
			r.Get("/usuarios/buscar/{query}", h.Stats.SearchUsers)
		})
	})

	r.Route("/noticias", func(r chi.Router) {
		r.Get("/", h.News.List)
		r.Get("/recientes", h.News.ListRecent)
		r.Get("/{id}", h.News.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middleware.RequireAdmin)
			r.Post("/", h.News.Create)
			r.Put("/{id}", h.News.Update)
			r.Delete("/{id}", h.News.Delete)
		})
	})

	r.Route("/normas", func(r chi.Router) {
		r.Get("/", h.Rule.List)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middleware.RequireAdmin)
			r.Post("/", h.Rule.Create)
			r.Put("/reordenar", h.Rule.Reorder)
			r.Put("/{id}", h.Rule.Update)
			r.Delete("/{id}", h.Rule.Delete)
		})
	})

	r.Route("/migration", func(r chi.Router) {
		r.Use(authenticate, middleware.RequireAdmin)
		r.Get("/status", h.Migration.Status)
		r.Post("/run-aprobacion-migration", h.Migration.Apply)
	})

	r.Get("/ws", h.WebSocket.ServeWs)

	return r
}
