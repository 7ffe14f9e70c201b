package station

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/storedesk/storedesk/internal/infrastructure/cache"
	"github.com/storedesk/storedesk/internal/infrastructure/migration"
	httpRouter "github.com/storedesk/storedesk/internal/interfaces/http"
	"github.com/storedesk/storedesk/internal/interfaces/cli/common"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

var (
	env                string
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "station",
		Short: "Start the station API",
		Long:  `Start the station HTTP API: login, session presence, page access and the auth state stream.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply pending migrations on startup")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	e, err := common.Init(env)
	if err != nil {
		return err
	}
	defer e.Close()
	cfg, log := e.Config, e.Log

	log.Infow("starting station", "environment", env, "station", cfg.Station.Name, "auto-migrate", autoMigrate)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	ctx := context.Background()
	if err := handleMigrations(ctx, e); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	var redisClient *redis.Client
	if strings.EqualFold(cfg.Identity.Backend, "redis") {
		redisClient, err = cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	container, err := httpRouter.NewContainer(cfg, e.DB, redisClient, log)
	if err != nil {
		return fmt.Errorf("failed to build station: %w", err)
	}
	if err := container.Start(ctx); err != nil {
		return fmt.Errorf("failed to start station: %w", err)
	}
	defer container.Shutdown()

	srv := &http.Server{
		Addr:        cfg.Server.GetAddr(),
		Handler:     container.Engine(),
		ReadTimeout: 15 * time.Second,
		// the auth state stream is long lived
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		logger.Error("failed to start server", "error", err)
		return err
	}

	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	container.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(ctx context.Context, e *common.Env) error {
	if skipMigrationCheck {
		e.Log.Infow("skipping migration check")
		return nil
	}

	strategy, err := migration.NewGooseStrategy(e.Config.Database.Driver, e.Log)
	if err != nil {
		return err
	}

	if autoMigrate {
		if e.Config.Server.Mode == gin.ReleaseMode {
			e.Log.Warnw("auto-migration is enabled in release mode")
		}
		e.Log.Infow("running migrations", "strategy", strategy.GetName())
		return strategy.Migrate(ctx, e.DB)
	}

	version, err := strategy.GetVersion(ctx, e.DB)
	if err != nil {
		e.Log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	e.Log.Infow("current migration version", "version", version)
	return nil
}
