package routes

import (
	"github.com/Dosada05/bug-arena/handlers"
	"github.com/Dosada05/bug-arena/middleware"
	"github.com/Dosada05/bug-arena/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes собирает все HTTP-маршруты арены.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	combatantHandler *handlers.CombatantHandler,
	battleHandler *handlers.BattleHandler,
	tournamentHandler *handlers.TournamentHandler,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
		})
	})

	router.Route("/combatants", func(r chi.Router) {
		// Публичное представление: скрытый фактор не сериализуется.
		r.Get("/", combatantHandler.List)
		r.Get("/{combatantID}", combatantHandler.GetByID)
		r.Get("/{combatantID}/battles", battleHandler.ListByCombatant)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", combatantHandler.Create)
			r.Get("/mine", combatantHandler.ListMine)
			r.Patch("/{combatantID}", combatantHandler.UpdateStats)
			r.Post("/{combatantID}/image", combatantHandler.UploadImage)
		})
	})

	router.Route("/battles", func(r chi.Router) {
		r.Get("/{battleID}", battleHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", battleHandler.ResolveExhibition)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/bracket", tournamentHandler.GetBracket)
		r.Get("/{tournamentID}/ws", webSocketHandler.Subscribe)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", tournamentHandler.Create)
			r.Post("/{tournamentID}/applications", tournamentHandler.Apply)
			r.Post("/{tournamentID}/start", tournamentHandler.Start)
			r.Post("/{tournamentID}/matches/{matchID}/report", tournamentHandler.ReportMatch)
		})
	})

	router.Route("/applications", func(r chi.Router) {
		r.Use(authenticate)
		r.Delete("/{applicationID}", tournamentHandler.WithdrawApplication)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePrivilegedViewer)
			r.Post("/{applicationID}/review", tournamentHandler.ReviewApplication)
		})
	})

	// Привилегированные представления: скрытые факторы и what-if прогнозы.
	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequirePrivilegedViewer)

		r.Get("/combatants/{combatantID}", adminHandler.GetCombatant)
		r.Put("/combatants/{combatantID}/hidden-factor", adminHandler.SetHiddenFactor)
		r.Get("/battles/{battleID}", adminHandler.GetBattle)
		r.Post("/predictions", adminHandler.Predict)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Put("/users/{userID}/role", authHandler.UpdateRole)
		})
	})
}
