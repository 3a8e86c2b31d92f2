package config

import (
	"testing"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"API_PORT", "HEALTH_PORT", "GIN_MODE", "COMMAND_TIMEOUT", "PROBE_RETRY_DELAY",
	"RUNNING_IN_CONTAINER", "WATCH_BACKEND_DIRS", "NETPLAN_DIR", "INTERFACES_FILE",
	"NM_CONNECTIONS_DIR", "RESOLV_CONF", "HOSTNAME_FILE", "HOSTS_FILE", "BACKUP_DIR",
	"MAX_BACKUPS", "DB_ENABLED", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"LOG_LEVEL", "LOG_FORMAT", "HEALTH_PROBE_INTERVAL", "HEALTH_PROBE_MAX_INTERVAL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestEnvironmentConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name      string
		envVars   map[string]string
		wantError bool
		validate  func(*testing.T, *Config)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8000", cfg.Server.Port)
				assert.Equal(t, "8080", cfg.Health.Port)
				assert.Equal(t, 30*time.Second, cfg.Host.CommandTimeout)
				assert.Equal(t, time.Second, cfg.Host.ProbeRetryDelay)
				assert.Nil(t, cfg.Host.ContainerOverride)
				assert.False(t, cfg.Host.WatchBackendDirs)
				assert.Equal(t, "/etc/netplan", cfg.Paths.NetplanDir)
				assert.Equal(t, "/etc/network/interfaces", cfg.Paths.InterfacesFile)
				assert.Equal(t, "/etc/NetworkManager/system-connections", cfg.Paths.NMConnectionsDir)
				assert.Equal(t, 5, cfg.Backup.MaxBackups)
				assert.False(t, cfg.Database.Enabled)
				assert.Equal(t, "info", cfg.Log.Level)
				assert.Equal(t, "json", cfg.Log.Format)
				assert.Equal(t, 30*time.Second, cfg.Health.ProbeInterval)
				assert.Equal(t, 5*time.Minute, cfg.Health.ProbeMaxInterval)
			},
		},
		{
			name: "overrides",
			envVars: map[string]string{
				"API_PORT":             "9000",
				"COMMAND_TIMEOUT":      "5s",
				"RUNNING_IN_CONTAINER": "true",
				"WATCH_BACKEND_DIRS":   "1",
				"NETPLAN_DIR":          "/tmp/netplan",
				"MAX_BACKUPS":          "2",
				"DB_ENABLED":           "true",
				"DB_HOST":              "db",
				"LOG_FORMAT":           "Compact",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "9000", cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Host.CommandTimeout)
				require.NotNil(t, cfg.Host.ContainerOverride)
				assert.True(t, *cfg.Host.ContainerOverride)
				assert.True(t, cfg.Host.WatchBackendDirs)
				assert.Equal(t, "/tmp/netplan", cfg.Paths.NetplanDir)
				assert.Equal(t, 2, cfg.Backup.MaxBackups)
				assert.True(t, cfg.Database.Enabled)
				assert.Equal(t, "db", cfg.Database.Host)
				assert.Equal(t, "compact", cfg.Log.Format)
			},
		},
		{
			name:    "container override false",
			envVars: map[string]string{"RUNNING_IN_CONTAINER": "false"},
			validate: func(t *testing.T, cfg *Config) {
				require.NotNil(t, cfg.Host.ContainerOverride)
				assert.False(t, *cfg.Host.ContainerOverride)
			},
		},
		{
			name:    "container override auto",
			envVars: map[string]string{"RUNNING_IN_CONTAINER": "auto"},
			validate: func(t *testing.T, cfg *Config) {
				assert.Nil(t, cfg.Host.ContainerOverride)
			},
		},
		{
			name:      "bad container override",
			envVars:   map[string]string{"RUNNING_IN_CONTAINER": "maybe"},
			wantError: true,
		},
		{
			name:      "non-numeric port",
			envVars:   map[string]string{"API_PORT": "http"},
			wantError: true,
		},
		{
			name:      "same ports",
			envVars:   map[string]string{"API_PORT": "8080"},
			wantError: true,
		},
		{
			name:      "probe max below interval",
			envVars:   map[string]string{"HEALTH_PROBE_INTERVAL": "1m", "HEALTH_PROBE_MAX_INTERVAL": "10s"},
			wantError: true,
		},
		{
			name:      "unknown log format",
			envVars:   map[string]string{"LOG_FORMAT": "xml"},
			wantError: true,
		},
		{
			name:    "database enabled with defaults",
			envVars: map[string]string{"DB_ENABLED": "true"},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "3306", cfg.Database.Port)
				assert.Equal(t, "linuxnet", cfg.Database.Database)
			},
		},
		{
			name:      "unparseable timeout falls back to default",
			envVars:   map[string]string{"COMMAND_TIMEOUT": "soon"},
			wantError: false,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 30*time.Second, cfg.Host.CommandTimeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewEnvironmentConfigLoader().Load()
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestEnvironmentConfigLoader_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMMAND_TIMEOUT", "-1s")

	_, err := NewEnvironmentConfigLoader().Load()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
