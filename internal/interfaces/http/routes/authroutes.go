package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/interfaces/http/handlers"
	"github.com/storedesk/storedesk/internal/interfaces/http/middleware"
)

// AuthRouteConfig holds dependencies for the auth and page routes.
type AuthRouteConfig struct {
	AuthHandler       *handlers.AuthHandler
	PageHandler       *handlers.PageHandler
	EventsHandler     *handlers.EventsHandler
	SessionMiddleware *middleware.SessionMiddleware
}

func SetupAuthRoutes(api *gin.RouterGroup, cfg *AuthRouteConfig) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/logout", cfg.AuthHandler.Logout)
		auth.GET("/state", cfg.AuthHandler.GetState)
		auth.GET("/events", cfg.EventsHandler.Stream)
		auth.POST("/permissions/check", cfg.AuthHandler.CheckPermissions)
		auth.PUT("/profile", cfg.SessionMiddleware.RequireLogin(), cfg.AuthHandler.UpdateProfile)
	}

	api.GET("/pages/:page/access", cfg.PageHandler.GetAccess)
}
