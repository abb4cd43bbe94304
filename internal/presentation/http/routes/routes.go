// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/formweave/formweave-go/internal/application/container"
	"github.com/formweave/formweave-go/internal/presentation/http/handlers"
	"github.com/formweave/formweave-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	formHandlers := handlers.NewFormHandlers(container.FormService, container.SessionService, container.Logger, container.PerfTracker)
	stateHandlers := handlers.NewStateHandlers(container.StateService, container.SessionService, container.Broadcaster, container.Logger, container.PerfTracker)
	submissionHandlers := handlers.NewSubmissionHandlers(container.SubmissionService, container.Logger, container.PerfTracker)
	repetitionHandlers := handlers.NewRepetitionHandlers(container.RepetitionService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	healthHandlers := handlers.NewHealthHandlers(container)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandlers.GetHealth)

		// Authentication
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.GET("/status", authHandlers.GetAuthStatus)
		}

		// Session-scoped engine surface
		sessionAPI := api.Group("")
		sessionAPI.Use(middleware.SessionMiddleware(container.SessionService))
		{
			sessionAPI.GET("/forms/:id", formHandlers.GetForm)
			sessionAPI.GET("/forms/:id/state", stateHandlers.GetState)
			sessionAPI.POST("/state", stateHandlers.PostState)
			sessionAPI.GET("/state/ws", stateHandlers.GetStateWS)
			sessionAPI.POST("/forms/:id/submit", submissionHandlers.PostSubmit)
			sessionAPI.POST("/forms/:id/repeat", repetitionHandlers.PostRepeat)
			sessionAPI.DELETE("/forms/:id/repetitions", repetitionHandlers.DeleteRepetition)
		}

		// Form definition listing is public; mutations need editor auth
		api.GET("/forms", formHandlers.ListForms)
		editor := api.Group("")
		editor.Use(middleware.EditorAuthMiddleware(container.AuthService))
		{
			editor.PUT("/forms/:id", formHandlers.PutForm)
			editor.DELETE("/forms/:id", formHandlers.DeleteForm)
		}
	}

	return r
}
