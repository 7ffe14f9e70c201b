package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/storedesk/storedesk/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	Session  sharedConfig.SessionConfig  `mapstructure:"session"`
	Identity sharedConfig.IdentityConfig `mapstructure:"identity"`
	Auth     sharedConfig.AuthConfig     `mapstructure:"auth"`
	Network  sharedConfig.NetworkConfig  `mapstructure:"network"`
	Station  sharedConfig.StationConfig  `mapstructure:"station"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (when present) and STOREDESK_* environment variables.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("STOREDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the last loaded configuration.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.mode", "release")

	// Database
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "storedesk")
	v.SetDefault("database.sslmode", "require")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30)

	// Logger
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Session
	v.SetDefault("session.heartbeat_interval", "10s")
	v.SetDefault("session.staleness_threshold", "24h")
	v.SetDefault("session.staleness_basis", "login_time")

	// Identity cache
	v.SetDefault("identity.backend", "file")
	v.SetDefault("identity.path", "")
	v.SetDefault("identity.key", "storedesk:identity")

	// Auth
	v.SetDefault("auth.admin_role", "admin")
	v.SetDefault("auth.default_role", "staff")
	v.SetDefault("auth.policy_file", "")

	// Network
	v.SetDefault("network.ip_services", []string{
		"https://api.ipify.org?format=json",
		"https://httpbin.org/ip",
		"https://ipapi.co/json/",
	})
	v.SetDefault("network.geo_service", "https://ipapi.co/%s/json/")
	v.SetDefault("network.timeout", "5s")

	// Station
	v.SetDefault("station.name", "")
	v.SetDefault("station.data_dir", "./data")
	v.SetDefault("station.snapshot_file", "localstorage.json")
}
