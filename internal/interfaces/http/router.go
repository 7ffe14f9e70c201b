package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/storedesk/storedesk/internal/infrastructure/metrics"
	"github.com/storedesk/storedesk/internal/interfaces/http/handlers"
	"github.com/storedesk/storedesk/internal/interfaces/http/middleware"
	"github.com/storedesk/storedesk/internal/interfaces/http/routes"
	"github.com/storedesk/storedesk/internal/shared/logger"

	_ "github.com/storedesk/storedesk/docs"
)

// Handlers is everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Page      *handlers.PageHandler
	Events    *handlers.EventsHandler
	Session   *handlers.SessionHandler
	Presence  *handlers.PresenceHandler
	Network   *handlers.NetworkHandler
	Barcode   *handlers.BarcodeHandler
	Import    *handlers.ImportHandler
	Inventory *handlers.InventoryHandler
}

// Router owns the gin engine of the station API.
type Router struct {
	engine            *gin.Engine
	handlers          *Handlers
	sessionMiddleware *middleware.SessionMiddleware
	metrics           *metrics.Metrics
	gatherer          prometheus.Gatherer
	allowedOrigins    []string
	logger            logger.Interface
}

func NewRouter(
	h *Handlers,
	sessionMiddleware *middleware.SessionMiddleware,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
	log logger.Interface,
) *Router {
	return &Router{
		engine:            gin.New(),
		handlers:          h,
		sessionMiddleware: sessionMiddleware,
		metrics:           m,
		gatherer:          gatherer,
		allowedOrigins:    allowedOrigins,
		logger:            log,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.Use(
		middleware.Recovery(r.logger),
		middleware.RequestLogger(r.logger),
		middleware.CORS(r.allowedOrigins),
		r.metrics.Handler(),
		middleware.ErrorHandler(r.logger),
	)

	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})
	if r.gatherer != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	api := r.engine.Group("/api")
	routes.SetupAuthRoutes(api, &routes.AuthRouteConfig{
		AuthHandler:       r.handlers.Auth,
		PageHandler:       r.handlers.Page,
		EventsHandler:     r.handlers.Events,
		SessionMiddleware: r.sessionMiddleware,
	})
	routes.SetupSessionRoutes(api, &routes.SessionRouteConfig{
		SessionHandler:    r.handlers.Session,
		PresenceHandler:   r.handlers.Presence,
		SessionMiddleware: r.sessionMiddleware,
	})
	routes.SetupStationRoutes(api, &routes.StationRouteConfig{
		NetworkHandler:    r.handlers.Network,
		BarcodeHandler:    r.handlers.Barcode,
		ImportHandler:     r.handlers.Import,
		SessionMiddleware: r.sessionMiddleware,
	})
	routes.SetupInventoryRoutes(api, &routes.InventoryRouteConfig{
		InventoryHandler:  r.handlers.Inventory,
		SessionMiddleware: r.sessionMiddleware,
	})

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(nethttp.StatusNotFound, gin.H{"success": false, "error": gin.H{"type": "not_found", "message": "route not found"}})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
