package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/application/polling"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/api"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/container"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API and the health server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		gin.SetMode(cfg.Server.GinMode)

		appContainer, err := container.NewContainer(cfg, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to create dependency injection container")
			return err
		}
		defer func() {
			if err := appContainer.Close(); err != nil {
				logger.WithError(err).Error("Failed to cleanup container")
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return NewApplication(appContainer, logger).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// Application runs the long-lived servers and background loops
type Application struct {
	container    *container.Container
	logger       *logrus.Logger
	apiServer    *http.Server
	healthServer *http.Server
}

// NewApplication creates a new Application
func NewApplication(c *container.Container, logger *logrus.Logger) *Application {
	cfg := c.GetConfig()

	handler := api.NewHandler(c.APIServices(), version, logger)

	return &Application{
		container: c,
		logger:    logger,
		apiServer: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           api.NewRouter(handler, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		healthServer: &http.Server{
			Addr:              ":" + cfg.Health.Port,
			Handler:           c.GetHealthService().Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (a *Application) Run(ctx context.Context) error {
	cfg := a.container.GetConfig()
	env := a.container.GetHostContext().Container()

	detection, err := a.container.Detection(ctx)
	a.container.GetHealthService().UpdateBackend(detection, err)
	if err != nil {
		// requests retry detection on demand
		a.logger.WithError(err).Warn("Initial backend detection failed")
	} else {
		a.logger.WithFields(logrus.Fields{
			"backend":     detection.Backend,
			"environment": env.Label(),
			"live_apply":  detection.LiveApply,
		}).Info("Network backend detected")
	}
	metrics.SetServiceInfo(version, backendLabel(detection, err), env.Label())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.WithField("port", cfg.Server.Port).Info("API server started")
		return listen(a.apiServer)
	})
	g.Go(func() error {
		a.logger.WithField("port", cfg.Health.Port).Info("Health check server started (with /metrics)")
		return listen(a.healthServer)
	})

	if cfg.Host.WatchBackendDirs {
		watcher, err := a.container.NewBackendWatcher()
		if err != nil {
			a.logger.WithError(err).Warn("Backend watcher disabled")
		} else {
			g.Go(func() error {
				watcher.Start(gctx)
				return watcher.Stop()
			})
		}
	}

	strategy := polling.NewExponentialBackoffStrategy(cfg.Health.ProbeInterval, cfg.Health.ProbeMaxInterval, 2.0, a.logger)
	prober := a.container.NewHealthProber()
	g.Go(func() error {
		err := polling.NewPollingController(strategy, a.logger).Start(gctx, prober.Probe)
		if stderrors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down")
		return a.shutdown()
	})

	a.logger.WithField("version", version).Info("linuxnetd started")
	return g.Wait()
}

func (a *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	apiErr := a.apiServer.Shutdown(ctx)
	healthErr := a.healthServer.Shutdown(ctx)
	return stderrors.Join(apiErr, healthErr)
}

func listen(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// backendLabel names the detected backend for the service info metric
func backendLabel(detection entities.DetectionResult, err error) string {
	if err != nil || detection.Backend == "" {
		return string(entities.BackendNone)
	}
	return string(detection.Backend)
}
