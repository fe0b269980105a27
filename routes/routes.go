package routes

import (
	"github.com/Bekzat04/sportsfest-system/handlers"
	"github.com/Bekzat04/sportsfest-system/middleware"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	sportHandler *handlers.SportHandler,
	teamHandler *handlers.TeamHandler,
	enrollmentHandler *handlers.EnrollmentHandler,
	captaincyHandler *handlers.CaptaincyHandler,
	fixtureHandler *handlers.FixtureHandler,
	resultHandler *handlers.ResultHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Get("/sports", sportHandler.ListSports)
	router.Get("/sports/{sport}", sportHandler.GetSport)
	router.Get("/sports/{sport}/teams/{teamName}", teamHandler.GetTeam)
	router.Get("/sports/{sport}/fixtures", fixtureHandler.ListFixtures)
	router.Get("/fixtures/{fixtureID}", fixtureHandler.GetFixture)
	router.Get("/players/{regNumber}/participations", enrollmentHandler.ListByPlayer)
	router.Get("/players/{playerID}/captaincies", captaincyHandler.ListSports)

	router.Get("/ws/sports/{sport}", webSocketHandler.ServeWs)

	// Authenticated player operations.
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Post("/teams", teamHandler.CreateTeam)
		r.Put("/teams/members", teamHandler.ReplaceMember)
		r.Post("/teams/{teamID}/logo", teamHandler.UploadLogo)
		r.Post("/enrollments", enrollmentHandler.Enroll)
	})

	// Staff-only operations.
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(models.RoleStaff, models.RoleAdmin))

		r.Delete("/sports/{sport}/teams/{teamName}", teamHandler.DeleteTeam)

		r.Post("/captaincies", captaincyHandler.Grant)
		r.Delete("/captaincies", captaincyHandler.Revoke)

		r.Post("/fixtures", fixtureHandler.Schedule)
		r.Post("/fixtures/league-round", fixtureHandler.ScheduleLeagueRound)
		r.Patch("/fixtures/{fixtureID}/status", resultHandler.ResolveStatus)
		r.Post("/fixtures/{fixtureID}/winner", resultHandler.SetWinner)
		r.Post("/fixtures/{fixtureID}/qualifiers", resultHandler.NominateQualifier)
		r.Post("/fixtures/{fixtureID}/qualifiers/freeze", resultHandler.FreezeQualifiers)
		r.Delete("/fixtures/{fixtureID}", resultHandler.DeleteFixture)

		r.Get("/dashboard/stats", dashboardHandler.EventStats)
	})
}
