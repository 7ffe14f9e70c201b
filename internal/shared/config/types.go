package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig describes the remote relational store. Driver is one of
// postgres, mysql or sqlite. DSN, when set, is used verbatim.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	DSN             string `mapstructure:"dsn"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch strings.ToLower(d.Driver) {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	case "sqlite":
		return d.Database
	default:
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "require"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			url.QueryEscape(d.Username), url.QueryEscape(d.Password), d.Host, d.Port, d.Database, sslMode)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SessionConfig holds heartbeat and staleness parameters.
type SessionConfig struct {
	HeartbeatInterval  time.Duration `mapstructure:"heartbeat_interval"`
	StalenessThreshold time.Duration `mapstructure:"staleness_threshold"`
	// StalenessBasis is login_time or last_activity.
	StalenessBasis string `mapstructure:"staleness_basis"`
}

// IdentityConfig selects the identity cache backend (file or redis).
type IdentityConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Key     string `mapstructure:"key"`
}

type AuthConfig struct {
	AdminRole   string `mapstructure:"admin_role"`
	DefaultRole string `mapstructure:"default_role"`
	PolicyFile  string `mapstructure:"policy_file"`
}

type NetworkConfig struct {
	IPServices []string      `mapstructure:"ip_services"`
	GeoService string        `mapstructure:"geo_service"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type StationConfig struct {
	Name         string `mapstructure:"name"`
	DataDir      string `mapstructure:"data_dir"`
	SnapshotFile string `mapstructure:"snapshot_file"`
}
