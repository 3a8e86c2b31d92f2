package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/pkg/utils"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig
	Host     HostConfig
	Paths    PathsConfig
	Backup   BackupConfig
	Database DatabaseConfig
	Log      LogConfig
	Health   HealthConfig
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// HostConfig controls how the service talks to the host
type HostConfig struct {
	CommandTimeout  time.Duration
	ProbeRetryDelay time.Duration

	// ContainerOverride is nil for auto-detection
	ContainerOverride *bool
	WatchBackendDirs  bool
}

// PathsConfig holds the host locations the service reads and writes
type PathsConfig struct {
	NetplanDir       string
	InterfacesFile   string
	NMConnectionsDir string
	ResolvConf       string
	HostnameFile     string
	HostsFile        string
}

// BackupConfig holds artifact backup settings
type BackupConfig struct {
	Directory  string
	MaxBackups int
}

// DatabaseConfig holds the optional history database settings
type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// HealthConfig holds the health and metrics server settings
type HealthConfig struct {
	Port             string
	ProbeInterval    time.Duration
	ProbeMaxInterval time.Duration
}

// ConfigLoader loads configuration
type ConfigLoader interface {
	Load() (*Config, error)
}

// EnvironmentConfigLoader loads configuration from environment variables
type EnvironmentConfigLoader struct{}

// NewEnvironmentConfigLoader creates a new EnvironmentConfigLoader
func NewEnvironmentConfigLoader() ConfigLoader {
	return &EnvironmentConfigLoader{}
}

// Load loads configuration from environment variables
func (l *EnvironmentConfigLoader) Load() (*Config, error) {
	override, err := getEnvTriState("RUNNING_IN_CONTAINER")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("API_PORT", constants.DefaultAPIPort),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Host: HostConfig{
			CommandTimeout:    getEnvDurationOrDefault("COMMAND_TIMEOUT", 30*time.Second),
			ProbeRetryDelay:   getEnvDurationOrDefault("PROBE_RETRY_DELAY", time.Second),
			ContainerOverride: override,
			WatchBackendDirs:  getEnvBoolOrDefault("WATCH_BACKEND_DIRS", false),
		},
		Paths: PathsConfig{
			NetplanDir:       getEnvOrDefault("NETPLAN_DIR", constants.NetplanConfigDir),
			InterfacesFile:   getEnvOrDefault("INTERFACES_FILE", constants.InterfacesFile),
			NMConnectionsDir: getEnvOrDefault("NM_CONNECTIONS_DIR", constants.NetworkManagerDir),
			ResolvConf:       getEnvOrDefault("RESOLV_CONF", constants.ResolvConf),
			HostnameFile:     getEnvOrDefault("HOSTNAME_FILE", constants.HostnameFile),
			HostsFile:        getEnvOrDefault("HOSTS_FILE", constants.HostsFile),
		},
		Backup: BackupConfig{
			Directory:  getEnvOrDefault("BACKUP_DIR", constants.DefaultBackupDir),
			MaxBackups: getEnvIntOrDefault("MAX_BACKUPS", constants.DefaultMaxBackups),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvBoolOrDefault("DB_ENABLED", false),
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			User:         getEnvOrDefault("DB_USER", "linuxnet"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			Database:     getEnvOrDefault("DB_NAME", "linuxnet"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDurationOrDefault("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", constants.DefaultLogLevel),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
		},
		Health: HealthConfig{
			Port:             getEnvOrDefault("HEALTH_PORT", constants.DefaultHealthPort),
			ProbeInterval:    getEnvDurationOrDefault("HEALTH_PROBE_INTERVAL", 30*time.Second),
			ProbeMaxInterval: getEnvDurationOrDefault("HEALTH_PROBE_MAX_INTERVAL", 5*time.Minute),
		},
	}

	if err := l.validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validate validates the configuration
func (l *EnvironmentConfigLoader) validate(config *Config) error {
	if err := validatePort("API_PORT", config.Server.Port); err != nil {
		return err
	}
	if err := validatePort("HEALTH_PORT", config.Health.Port); err != nil {
		return err
	}
	if config.Server.Port == config.Health.Port {
		return errors.NewValidationError("API_PORT and HEALTH_PORT must differ", nil)
	}

	if config.Host.CommandTimeout <= 0 {
		return errors.NewValidationError("invalid command timeout", nil)
	}
	if config.Host.ProbeRetryDelay < 0 {
		return errors.NewValidationError("invalid probe retry delay", nil)
	}
	if config.Health.ProbeInterval <= 0 || config.Health.ProbeMaxInterval < config.Health.ProbeInterval {
		return errors.NewValidationError("invalid health probe intervals", nil)
	}
	if config.Backup.MaxBackups < 0 {
		return errors.NewValidationError("invalid max backups", nil)
	}

	switch config.Log.Format {
	case "json", "text", "compact":
	default:
		return errors.NewValidationError(fmt.Sprintf("unknown log format %q", config.Log.Format), nil)
	}

	if config.Database.Enabled {
		db := config.Database
		if err := utils.ValidateDatabaseConfig(db.Host, db.Port, db.User, db.Database); err != nil {
			return errors.NewValidationError("invalid database configuration", err)
		}
	}

	return nil
}

func validatePort(key, value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return errors.NewValidationError(fmt.Sprintf("%s must be a port number, got %q", key, value), err)
	}
	return nil
}

// Environment variable helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvTriState returns nil for unset or "auto"
func getEnvTriState(key string) (*bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" || strings.EqualFold(value, "auto") {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("%s must be true, false or auto, got %q", key, value), err)
	}
	return &b, nil
}
