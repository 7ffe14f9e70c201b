package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/interfaces/http/handlers"
	"github.com/storedesk/storedesk/internal/interfaces/http/middleware"
)

// StationRouteConfig holds dependencies for station utility routes.
type StationRouteConfig struct {
	NetworkHandler    *handlers.NetworkHandler
	BarcodeHandler    *handlers.BarcodeHandler
	ImportHandler     *handlers.ImportHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// ImportCapability guards the local snapshot import endpoints.
const ImportCapability = "import-export"

func SetupStationRoutes(api *gin.RouterGroup, cfg *StationRouteConfig) {
	api.GET("/network/ip", cfg.NetworkHandler.PublicIP)
	api.GET("/network/location", cfg.NetworkHandler.Location)
	api.POST("/barcodes/validate", cfg.BarcodeHandler.Validate)

	imports := api.Group("/import", cfg.SessionMiddleware.RequirePermission(ImportCapability))
	{
		imports.GET("", cfg.ImportHandler.Check)
		imports.POST("/run", cfg.ImportHandler.Run)
		imports.DELETE("/local", cfg.ImportHandler.Clear)
	}
}
