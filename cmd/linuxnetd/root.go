package main

import (
	"encoding/json"
	"os"

	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/config"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/container"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "linuxnetd",
	Short:         "linuxnetd manages host network interface configuration over a REST API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// loadConfig loads the environment configuration and builds the logger.
// Logs go to stderr so command output on stdout stays machine readable.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.NewEnvironmentConfigLoader().Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return cfg, logger, nil
}

// withContainer builds the dependency container, runs fn and closes it
func withContainer(fn func(c *container.Container, logger *logrus.Logger) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	appContainer, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logger.WithError(err).Error("Failed to cleanup container")
		}
	}()

	return fn(appContainer, logger)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
