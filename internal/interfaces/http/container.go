package http

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/storedesk/storedesk/internal/application/auth"
	"github.com/storedesk/storedesk/internal/application/importer"
	appInventory "github.com/storedesk/storedesk/internal/application/inventory"
	appSession "github.com/storedesk/storedesk/internal/application/session"
	"github.com/storedesk/storedesk/internal/domain/employee"
	domainPermission "github.com/storedesk/storedesk/internal/domain/permission"
	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/domain/shared/events"
	"github.com/storedesk/storedesk/internal/infrastructure/cache"
	"github.com/storedesk/storedesk/internal/infrastructure/config"
	"github.com/storedesk/storedesk/internal/infrastructure/metrics"
	"github.com/storedesk/storedesk/internal/infrastructure/network"
	"github.com/storedesk/storedesk/internal/infrastructure/permission"
	"github.com/storedesk/storedesk/internal/infrastructure/pubsub"
	"github.com/storedesk/storedesk/internal/infrastructure/repository"
	"github.com/storedesk/storedesk/internal/infrastructure/scheduler"
	"github.com/storedesk/storedesk/internal/infrastructure/services"
	"github.com/storedesk/storedesk/internal/interfaces/http/handlers"
	"github.com/storedesk/storedesk/internal/interfaces/http/middleware"
	"github.com/storedesk/storedesk/internal/shared/goroutine"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

const eventBufferSize = 100

// Container wires the station subsystem together and owns its background
// goroutines. Shutdown stops them in reverse order.
type Container struct {
	cfg   *config.Config
	db    *gorm.DB
	redis *redis.Client
	log   logger.Interface

	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	dispatcher *events.InMemoryEventDispatcher
	identity   session.IdentityCache
	heartbeat  *scheduler.HeartbeatScheduler
	auth       *auth.Service
	hub        *services.StateHub
	bus        *pubsub.RedisAuthStateBus
	router     *Router

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewContainer builds every component. redisClient may be nil unless the
// identity backend is redis.
func NewContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log logger.Interface) (*Container, error) {
	c := &Container{cfg: cfg, db: db, redis: redisClient, log: log}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(c.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	c.metrics = m

	employeeRepo := repository.NewEmployeeRepository(db)
	sessionRepo := repository.NewEmployeeSessionRepository(db, log.With("component", "session_store"))

	c.identity, err = cache.NewIdentityCache(&cfg.Identity, cfg.Station.DataDir, redisClient, log.With("component", "identity_cache"))
	if err != nil {
		return nil, err
	}

	c.dispatcher = events.NewInMemoryEventDispatcher(eventBufferSize, log.With("component", "events"))

	c.heartbeat = scheduler.NewHeartbeatScheduler(sessionRepo, c.identity, cfg.Session.HeartbeatInterval, m, log)

	basis, err := session.ParseStalenessBasis(cfg.Session.StalenessBasis)
	if err != nil {
		return nil, err
	}
	c.auth = auth.NewService(employeeRepo, sessionRepo, c.identity, c.dispatcher, c.heartbeat, m, auth.Config{
		DefaultRole: cfg.Auth.DefaultRole,
		AdminRole:   cfg.Auth.AdminRole,
		Staleness:   session.StalenessPolicy{Threshold: cfg.Session.StalenessThreshold, Basis: basis},
		Station:     cfg.Station.Name,
	}, log)

	guard, err := newPageGuard(cfg, db, m, log)
	if err != nil {
		return nil, err
	}

	coordinator := appSession.NewCoordinator(sessionRepo, employeeRepo, c.identity, log).
		WithLiveWindow(3 * cfg.Session.HeartbeatInterval)
	lookup := network.NewIPLookup(cfg.Network.IPServices, cfg.Network.Timeout, log).
		WithGeoService(cfg.Network.GeoService)
	inventoryRepo := repository.NewInventoryRepository(db)
	snapshotImporter := importer.NewImporter(
		filepath.Join(cfg.Station.DataDir, cfg.Station.SnapshotFile),
		inventoryRepo,
		repository.NewAppSettingRepository(db),
		cfg.Auth.DefaultRole,
		log.With("component", "importer"),
	)

	c.hub = services.NewStateHub(0, log.With("component", "state_hub"))
	if redisClient != nil {
		c.bus = pubsub.NewRedisAuthStateBus(redisClient, "", log.With("component", "auth_state_bus"))
	}

	sessionMiddleware := middleware.NewSessionMiddleware(c.auth, log)
	c.router = NewRouter(&Handlers{
		Auth:      handlers.NewAuthHandler(c.auth, log),
		Page:      handlers.NewPageHandler(c.auth, guard, log),
		Events:    handlers.NewEventsHandler(c.hub, c.auth, log),
		Session:   handlers.NewSessionHandler(coordinator, log),
		Presence:  handlers.NewPresenceHandler(c.heartbeat, log),
		Network:   handlers.NewNetworkHandler(lookup, log),
		Barcode:   handlers.NewBarcodeHandler(),
		Import:    handlers.NewImportHandler(snapshotImporter, log),
		Inventory: handlers.NewInventoryHandler(appInventory.NewService(inventoryRepo, log), log),
	}, sessionMiddleware, m, c.registry, cfg.Server.AllowedOrigins, log)
	c.router.SetupRoutes()

	return c, nil
}

func newPageGuard(cfg *config.Config, db *gorm.DB, m *metrics.Metrics, log logger.Interface) (*permission.PageGuard, error) {
	enforcer, err := permission.NewEnforcer(db, log)
	if err != nil {
		return nil, err
	}
	guard := permission.NewPageGuard(enforcer, employee.NewPermissionPolicy(cfg.Auth.AdminRole), m, log)

	pages := domainPermission.DefaultPages()
	if cfg.Auth.PolicyFile != "" {
		pages, err = permission.LoadPagePolicyFile(cfg.Auth.PolicyFile)
		if err != nil {
			return nil, err
		}
	}
	if err := guard.Seed(pages); err != nil {
		return nil, fmt.Errorf("failed to seed page policy: %w", err)
	}
	return guard, nil
}

// Start connects the event fan-out and restores the cached login.
func (c *Container) Start(ctx context.Context) error {
	if err := c.dispatcher.Subscribe(auth.EventTypeAuthStateChanged,
		events.NewSimpleEventHandler(auth.EventTypeAuthStateChanged, c.relayAuthState)); err != nil {
		return err
	}
	if err := c.dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}

	busCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	if c.bus != nil {
		goroutine.SafeGoWait(&c.wg, c.log, "auth-state-subscriber", func() {
			_ = c.bus.Subscribe(busCtx, func(msg pubsub.AuthStateMessage) {
				c.hub.Broadcast(&services.AuthStateEvent{
					IsLoggedIn: msg.IsLoggedIn,
					Employee:   msg.Employee,
					OccurredAt: msg.OccurredAt,
					Remote:     true,
				})
			})
		})
	}

	restored := c.auth.Initialize(ctx)
	c.log.Infow("station session initialised", "restored", restored)
	return nil
}

func (c *Container) relayAuthState(event events.DomainEvent) error {
	changed, ok := event.(*auth.AuthStateChangedEvent)
	if !ok {
		return nil
	}
	c.hub.Broadcast(&services.AuthStateEvent{
		IsLoggedIn: changed.IsLoggedIn,
		Employee:   changed.Employee,
		OccurredAt: changed.OccurredAt,
	})
	if c.bus == nil {
		return nil
	}
	return c.bus.Publish(context.Background(), pubsub.AuthStateMessage{
		IsLoggedIn: changed.IsLoggedIn,
		Employee:   changed.Employee,
		OccurredAt: changed.OccurredAt,
	})
}

func (c *Container) Engine() *gin.Engine {
	return c.router.GetEngine()
}

func (c *Container) Auth() *auth.Service {
	return c.auth
}

func (c *Container) Heartbeat() *scheduler.HeartbeatScheduler {
	return c.heartbeat
}

// Shutdown stops the heartbeat and background work. The cached identity is
// left in place so the next start restores the login. Safe to call more
// than once.
func (c *Container) Shutdown() {
	c.once.Do(func() {
		c.heartbeat.Stop()
		c.heartbeat.Wait()
		c.auth.Wait()
		c.hub.Shutdown()
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
		if err := c.dispatcher.Stop(); err != nil {
			c.log.Warnw("failed to stop event dispatcher", "error", err)
		}
	})
}
