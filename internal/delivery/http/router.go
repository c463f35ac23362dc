package http

import (
	"github.com/gin-gonic/gin"

	"github.com/moai-app/moai-backend/internal/delivery/http/handler"
	"github.com/moai-app/moai-backend/internal/delivery/http/middleware"
)

type Router struct {
	authHandler    *handler.AuthHandler
	profileHandler *handler.ProfileHandler
	matchHandler   *handler.MatchHandler
	convHandler    *handler.ConversationHandler
	authMiddleware *middleware.AuthMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	matchHandler *handler.MatchHandler,
	convHandler *handler.ConversationHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		authHandler:    authHandler,
		profileHandler: profileHandler,
		matchHandler:   matchHandler,
		convHandler:    convHandler,
		authMiddleware: authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public, dev tokens only)
		auth := v1.Group("/auth")
		{
			auth.POST("/dev-token", r.authHandler.DevToken)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Profile routes
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMe)
				profile.PUT("/me", r.profileHandler.UpsertProfile)
				profile.PUT("/me/preferences", r.profileHandler.UpsertPreferences)
				profile.PUT("/me/intake", r.profileHandler.UpsertIntake)
			}

			// Match routes
			matches := protected.Group("/matches")
			{
				matches.POST("/generate", r.matchHandler.Generate)
				matches.GET("/pending", r.matchHandler.Pending)
				matches.POST("/:candidate_id/consent", r.matchHandler.Consent)
				matches.GET("/:candidate_id/mutual", r.matchHandler.Mutual)
			}

			// Conversation routes
			conversations := protected.Group("/conversations")
			{
				conversations.GET("", r.convHandler.List)
				conversations.GET("/:conversation_id/messages", r.convHandler.Messages)
				conversations.POST("/:conversation_id/messages", r.convHandler.SendMessage)
			}
		}
	}

	return router
}
