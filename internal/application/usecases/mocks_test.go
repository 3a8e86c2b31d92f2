package usecases

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	domainErrors "github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/services"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/adapters"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/network"
	infraServices "github.com/esnrhm/LinuxNetAPI/internal/infrastructure/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type fakeDetector struct {
	mu            sync.Mutex
	result        entities.DetectionResult
	err           error
	invalidations int
}

func (d *fakeDetector) Detect(ctx context.Context) (entities.DetectionResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result, d.err
}

func (d *fakeDetector) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invalidations++
}

type fakeRegistry struct {
	classifier *services.InterfaceClassifier
	links      map[string]entities.NetworkInterface
	routes     []entities.Route
}

func newFakeRegistry(names ...string) *fakeRegistry {
	r := &fakeRegistry{classifier: services.NewInterfaceClassifier(), links: map[string]entities.NetworkInterface{}}
	for _, name := range names {
		r.links[name] = entities.NetworkInterface{
			Name:      name,
			Kind:      r.classifier.Classify(name),
			LinkType:  "device",
			State:     entities.LinkStateUp,
			Addresses: []string{},
			Mode:      entities.ModeUnknown,
		}
	}
	return r
}

func (r *fakeRegistry) ListAll(ctx context.Context) ([]entities.NetworkInterface, error) {
	list := make([]entities.NetworkInterface, 0, len(r.links))
	for _, ni := range r.links {
		list = append(list, ni)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *fakeRegistry) ListPublic(ctx context.Context) ([]entities.NetworkInterface, error) {
	all, _ := r.ListAll(ctx)
	public := []entities.NetworkInterface{}
	for _, ni := range all {
		if ni.IsPublic() {
			public = append(public, ni)
		}
	}
	return public, nil
}

func (r *fakeRegistry) Get(ctx context.Context, name string) (*entities.NetworkInterface, error) {
	ni, ok := r.links[name]
	if !ok {
		return nil, domainErrors.NewNotFoundError(fmt.Sprintf("interface %s not found", name))
	}
	return &ni, nil
}

func (r *fakeRegistry) Routes(ctx context.Context) ([]entities.Route, error) {
	return r.routes, nil
}

type MockLiveApplier struct {
	mock.Mock
}

func (m *MockLiveApplier) Apply(ctx context.Context, name string, cfg entities.InterfaceConfig) ([]string, error) {
	args := m.Called(ctx, name, cfg)
	warnings, _ := args.Get(0).([]string)
	return warnings, args.Error(1)
}

type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	ret := m.Called(ctx, command, args)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

func (m *MockCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	ret := m.Called(ctx, timeout, command, args)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

type MockServiceController struct {
	mock.Mock
}

func (m *MockServiceController) Restart(ctx context.Context, backend entities.BackendKind, name string) ([]string, error) {
	args := m.Called(ctx, backend, name)
	actions, _ := args.Get(0).([]string)
	return actions, args.Error(1)
}

func (m *MockServiceController) Enable(ctx context.Context, backend entities.BackendKind, name string) ([]string, error) {
	args := m.Called(ctx, backend, name)
	actions, _ := args.Get(0).([]string)
	return actions, args.Error(1)
}

func (m *MockServiceController) Disable(ctx context.Context, backend entities.BackendKind, name string) ([]string, error) {
	args := m.Called(ctx, backend, name)
	actions, _ := args.Get(0).([]string)
	return actions, args.Error(1)
}

func (m *MockServiceController) ApplyAll(ctx context.Context, backend entities.BackendKind, serviceAllowed bool) ([]string, error) {
	args := m.Called(ctx, backend, serviceAllowed)
	actions, _ := args.Get(0).([]string)
	return actions, args.Error(1)
}

type MockHostnameManager struct {
	mock.Mock
}

func (m *MockHostnameManager) Current(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockHostnameManager) Set(ctx context.Context, hostname string, useService bool) ([]string, []string, error) {
	args := m.Called(ctx, hostname, useService)
	actions, _ := args.Get(0).([]string)
	warnings, _ := args.Get(1).([]string)
	return actions, warnings, args.Error(2)
}

type fakeResolver struct {
	servers []string
	err     error
}

func (r fakeResolver) Nameservers() ([]string, error) {
	return r.servers, r.err
}

type fakeEnvironment struct {
	tools map[string]bool
}

func (e fakeEnvironment) DetectEnvironment() entities.ContainerEnvironment {
	return entities.NewContainerEnvironment(false, true, nil)
}

func (e fakeEnvironment) AvailableTools() map[string]bool {
	return e.tools
}

// memoryHistory is an in-memory HistoryRepository
type memoryHistory struct {
	mu      sync.Mutex
	records []entities.HistoryRecord
	err     error
}

func (h *memoryHistory) Record(ctx context.Context, record entities.HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, record)
	return nil
}

func (h *memoryHistory) ListByInterface(ctx context.Context, name string, limit int) ([]entities.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []entities.HistoryRecord
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		if h.records[i].Interface == name {
			out = append(out, h.records[i])
		}
	}
	return out, nil
}

func (h *memoryHistory) Ping(ctx context.Context) error {
	return nil
}

func (h *memoryHistory) all() []entities.HistoryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]entities.HistoryRecord(nil), h.records...)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var hostEnv = entities.NewContainerEnvironment(false, true, nil)
var containerEnv = entities.NewContainerEnvironment(true, false, []string{"/.dockerenv"})

// harness wires the use cases to real artifact stores rooted in a temp dir
type harness struct {
	paths     network.Paths
	backupDir string
	detector  *fakeDetector
	registry  *fakeRegistry
	live      *MockLiveApplier
	executor  *MockCommandExecutor
	services  *MockServiceController
	history   *memoryHistory
	host      *HostContext
	backups   *infraServices.BackupService

	configure *ConfigureInterfaceUseCase
	control   *InterfaceControlUseCase
	cleanup   *CleanupArtifactsUseCase
	artifacts *ArtifactsUseCase
}

func newHarness(t *testing.T, backend entities.BackendKind, env entities.ContainerEnvironment) *harness {
	t.Helper()
	root := t.TempDir()
	paths := network.Paths{
		NetplanDir:       filepath.Join(root, "netplan"),
		InterfacesFile:   filepath.Join(root, "network", "interfaces"),
		NMConnectionsDir: filepath.Join(root, "nm"),
		ResolvConf:       filepath.Join(root, "resolv.conf"),
		HostnameFile:     filepath.Join(root, "hostname"),
		HostsFile:        filepath.Join(root, "hosts"),
	}

	logger := testLogger()
	fs := adapters.NewRealFileSystem()
	classifier := services.NewInterfaceClassifier()

	h := &harness{
		paths:     paths,
		backupDir: filepath.Join(root, "backups"),
		detector: &fakeDetector{result: entities.DetectionResult{
			Backend:   backend,
			Container: env,
			LiveApply: true,
		}},
		registry: newFakeRegistry("eth0", "eth1", "docker0", "lo"),
		live:     &MockLiveApplier{},
		executor: &MockCommandExecutor{},
		services: &MockServiceController{},
		history:  &memoryHistory{},
	}
	h.host = NewHostContext(h.detector, env, logger)
	h.backups = infraServices.NewBackupService(fs, adapters.NewRealClock(), logger, h.backupDir, 5)

	stores := network.NewArtifactStoreFactory(h.executor, fs, logger, paths)
	validator := network.NewConfigValidator()

	h.configure = NewConfigureInterfaceUseCase(h.host, h.registry, classifier, h.live, stores,
		network.NewConfigFileGenerator(paths), validator, h.backups, h.history, logger)
	h.control = NewInterfaceControlUseCase(h.host, h.registry, classifier, h.executor, h.services, h.history, logger)
	h.cleanup = NewCleanupArtifactsUseCase(h.host, classifier, stores, h.backups, h.history, logger)
	h.artifacts = NewArtifactsUseCase(h.host, classifier, stores, validator, logger)
	return h
}

var scenarioStatic = entities.InterfaceConfig{
	IPAddress:  "192.168.1.100",
	Netmask:    "255.255.255.0",
	Gateway:    "192.168.1.1",
	DNSServers: []string{"8.8.8.8", "1.1.1.1"},
}

var scenarioDHCP = entities.InterfaceConfig{DHCP: true}
