package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/interfaces/http/handlers"
	"github.com/storedesk/storedesk/internal/interfaces/http/middleware"
)

// SessionRouteConfig holds dependencies for session and presence routes.
type SessionRouteConfig struct {
	SessionHandler    *handlers.SessionHandler
	PresenceHandler   *handlers.PresenceHandler
	SessionMiddleware *middleware.SessionMiddleware
}

func SetupSessionRoutes(api *gin.RouterGroup, cfg *SessionRouteConfig) {
	sessions := api.Group("/sessions", cfg.SessionMiddleware.RequireLogin())
	{
		sessions.GET("", cfg.SessionHandler.ListActive)
		sessions.POST("/logout-others", cfg.SessionHandler.LogoutOthers)
	}

	presence := api.Group("/presence")
	{
		presence.GET("", cfg.PresenceHandler.Status)
		presence.POST("/visibility", cfg.PresenceHandler.Visibility)
		presence.POST("/unload", cfg.PresenceHandler.Unload)
	}
}
