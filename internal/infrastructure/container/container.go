package container

import (
	"context"
	"database/sql"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/application/polling"
	"github.com/esnrhm/LinuxNetAPI/internal/application/usecases"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/services"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/adapters"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/api"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/config"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/health"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/metrics"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/network"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/persistence"
	infraservices "github.com/esnrhm/LinuxNetAPI/internal/infrastructure/services"

	"github.com/sirupsen/logrus"
)

const dbConnectTimeout = 10 * time.Second

// Container wires every component of the service
type Container struct {
	config *config.Config
	logger *logrus.Logger

	// adapters
	fileSystem      interfaces.FileSystem
	commandExecutor interfaces.CommandExecutor
	clock           interfaces.Clock
	envDetector     *adapters.RealEnvironmentDetector
	paths           network.Paths

	// network infrastructure
	classifier        *services.InterfaceClassifier
	detector          *network.CachedBackendDetector
	registry          *network.NetlinkRegistry
	stores            *network.ArtifactStoreFactory
	generator         *network.ConfigFileGenerator
	validator         *network.ConfigValidator
	liveApplier       *network.NetlinkLiveApplier
	serviceController *network.BackendServiceController
	hostnameAdapter   *network.HostnameAdapter
	resolver          *network.ResolvConfReader
	backups           *infraservices.BackupService

	// persistence
	db      *sql.DB
	history interfaces.HistoryRepository

	healthService *health.HealthService
	hostContext   *usecases.HostContext

	// use cases
	queryUseCase     *usecases.QueryUseCase
	configureUseCase *usecases.ConfigureInterfaceUseCase
	controlUseCase   *usecases.InterfaceControlUseCase
	cleanupUseCase   *usecases.CleanupArtifactsUseCase
	artifactsUseCase *usecases.ArtifactsUseCase
	statusUseCase    *usecases.NetworkStatusUseCase
	hostnameUseCase  *usecases.HostnameUseCase
	historyUseCase   *usecases.HistoryUseCase
}

// NewContainer creates a new Container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initializeInfrastructure(); err != nil {
		return nil, err
	}

	if err := container.initializeServices(); err != nil {
		container.Close()
		return nil, err
	}

	container.initializeUseCases()

	return container, nil
}

// initializeInfrastructure sets up the host adapters and the history database
func (c *Container) initializeInfrastructure() error {
	c.fileSystem = adapters.NewRealFileSystem()
	c.commandExecutor = adapters.NewRealCommandExecutor(c.config.Host.CommandTimeout)
	c.clock = adapters.NewRealClock()
	c.envDetector = adapters.NewRealEnvironmentDetector(c.fileSystem, c.config.Host.ContainerOverride)

	p := c.config.Paths
	c.paths = network.Paths{
		NetplanDir:       p.NetplanDir,
		InterfacesFile:   p.InterfacesFile,
		NMConnectionsDir: p.NMConnectionsDir,
		ResolvConf:       p.ResolvConf,
		HostnameFile:     p.HostnameFile,
		HostsFile:        p.HostsFile,
	}

	if !c.config.Database.Enabled {
		c.history = persistence.NewNoopHistoryRepository()
		metrics.SetDBConnectionStatus(false)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbConnectTimeout)
	defer cancel()

	dbCfg := c.config.Database
	db, err := persistence.OpenMySQL(ctx, persistence.MySQLConfig{
		Host:         dbCfg.Host,
		Port:         dbCfg.Port,
		User:         dbCfg.User,
		Password:     dbCfg.Password,
		Database:     dbCfg.Database,
		MaxOpenConns: dbCfg.MaxOpenConns,
		MaxIdleConns: dbCfg.MaxIdleConns,
		MaxLifetime:  dbCfg.MaxLifetime,
	})
	if err != nil {
		return err
	}
	c.db = db

	repo := persistence.NewMySQLHistoryRepository(db, c.logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		c.db = nil
		return err
	}
	c.history = repo
	metrics.SetDBConnectionStatus(true)

	return nil
}

// initializeServices builds the network components on top of the adapters
func (c *Container) initializeServices() error {
	nl := network.DefaultNetlinker

	c.classifier = services.NewInterfaceClassifier()
	c.detector = network.NewCachedBackendDetector(
		c.commandExecutor,
		c.fileSystem,
		c.envDetector,
		nl,
		c.paths,
		c.config.Host.ProbeRetryDelay,
		c.logger,
	)

	c.stores = network.NewArtifactStoreFactory(c.commandExecutor, c.fileSystem, c.logger, c.paths)
	c.registry = network.NewNetlinkRegistry(nl, c.classifier, nil, c.config.Host.ProbeRetryDelay, c.logger)
	c.registry.SetModeResolver(network.NewDetectedModeResolver(c.detector, c.stores))

	c.generator = network.NewConfigFileGenerator(c.paths)
	c.validator = network.NewConfigValidator()
	c.liveApplier = network.NewNetlinkLiveApplier(nl, c.commandExecutor, c.fileSystem, c.paths.ResolvConf, c.logger)
	c.serviceController = network.NewBackendServiceController(c.commandExecutor, c.fileSystem, c.logger)
	c.hostnameAdapter = network.NewHostnameAdapter(c.commandExecutor, c.fileSystem, c.paths, c.logger)
	c.resolver = network.NewResolvConfReader(c.fileSystem, c.paths)
	c.backups = infraservices.NewBackupService(
		c.fileSystem,
		c.clock,
		c.logger,
		c.config.Backup.Directory,
		c.config.Backup.MaxBackups,
	)

	c.healthService = health.NewHealthService(c.clock, c.logger, c.config.Database.Enabled)

	// container classification is computed once for the process lifetime
	env := c.envDetector.DetectEnvironment()
	c.hostContext = usecases.NewHostContext(c.detector, env, c.logger)

	return nil
}

// initializeUseCases builds the use cases
func (c *Container) initializeUseCases() {
	c.queryUseCase = usecases.NewQueryUseCase(c.hostContext, c.registry, c.classifier, c.envDetector, c.logger)

	c.configureUseCase = usecases.NewConfigureInterfaceUseCase(
		c.hostContext,
		c.registry,
		c.classifier,
		c.liveApplier,
		c.stores,
		c.generator,
		c.validator,
		c.backups,
		c.history,
		c.logger,
	)
	c.configureUseCase.SetObserver(c.healthService)

	c.controlUseCase = usecases.NewInterfaceControlUseCase(
		c.hostContext,
		c.registry,
		c.classifier,
		c.commandExecutor,
		c.serviceController,
		c.history,
		c.logger,
	)

	c.cleanupUseCase = usecases.NewCleanupArtifactsUseCase(c.hostContext, c.classifier, c.stores, c.backups, c.history, c.logger)
	c.artifactsUseCase = usecases.NewArtifactsUseCase(c.hostContext, c.classifier, c.stores, c.validator, c.logger)
	c.statusUseCase = usecases.NewNetworkStatusUseCase(
		c.hostContext,
		c.registry,
		c.resolver,
		c.hostnameAdapter,
		c.serviceController,
		c.logger,
	)
	c.hostnameUseCase = usecases.NewHostnameUseCase(c.hostContext, c.hostnameAdapter, c.logger)
	c.historyUseCase = usecases.NewHistoryUseCase(c.history)
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetHealthService returns the health service
func (c *Container) GetHealthService() *health.HealthService {
	return c.healthService
}

// GetHostContext returns the shared host context
func (c *Container) GetHostContext() *usecases.HostContext {
	return c.hostContext
}

// GetQueryUseCase returns the interface query use case
func (c *Container) GetQueryUseCase() *usecases.QueryUseCase {
	return c.queryUseCase
}

// GetConfigureUseCase returns the configure use case
func (c *Container) GetConfigureUseCase() *usecases.ConfigureInterfaceUseCase {
	return c.configureUseCase
}

// GetCleanupUseCase returns the cleanup use case
func (c *Container) GetCleanupUseCase() *usecases.CleanupArtifactsUseCase {
	return c.cleanupUseCase
}

// GetArtifactsUseCase returns the artifact listing and validation use case
func (c *Container) GetArtifactsUseCase() *usecases.ArtifactsUseCase {
	return c.artifactsUseCase
}

// APIServices returns the use cases served over HTTP
func (c *Container) APIServices() api.Services {
	return api.Services{
		Query:     c.queryUseCase,
		Configure: c.configureUseCase,
		Control:   c.controlUseCase,
		Cleanup:   c.cleanupUseCase,
		Artifacts: c.artifactsUseCase,
		Status:    c.statusUseCase,
		Hostname:  c.hostnameUseCase,
		History:   c.historyUseCase,
	}
}

// NewBackendWatcher returns a watcher that invalidates cached detection on backend file changes
func (c *Container) NewBackendWatcher() (*network.BackendWatcher, error) {
	return network.NewBackendWatcher(c.detector, c.paths, c.logger)
}

// NewHealthProber returns the periodic backend and database prober
func (c *Container) NewHealthProber() *polling.HealthProber {
	var history interfaces.HistoryRepository
	if c.config.Database.Enabled {
		history = c.history
	}
	return polling.NewHealthProber(c.detector, history, c.healthService, c.config.Host.CommandTimeout, c.logger)
}

// Detection returns the cached backend detection
func (c *Container) Detection(ctx context.Context) (entities.DetectionResult, error) {
	return c.hostContext.Detection(ctx)
}

// Close releases the database connection
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
