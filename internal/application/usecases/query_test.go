package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	domainErrors "github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newQuery(h *harness) *QueryUseCase {
	env := fakeEnvironment{tools: map[string]bool{"ip": true, "netplan": false}}
	return NewQueryUseCase(h.host, h.registry, services.NewInterfaceClassifier(), env, testLogger())
}

func TestQueryUseCase_Interfaces(t *testing.T) {
	h := newHarness(t, entities.BackendNetplan, hostEnv)
	query := newQuery(h)

	public, err := query.ListPublic(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"eth0", "eth1"}, names(public))

	all, err := query.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"docker0", "eth0", "eth1", "lo"}, names(all))

	docker, err := query.Get(context.Background(), "docker0")
	require.NoError(t, err)
	assert.Equal(t, entities.KindVirtual, docker.Kind)

	_, err = query.Get(context.Background(), "eth5")
	assert.True(t, domainErrors.IsNotFoundError(err))

	_, err = query.Get(context.Background(), "a/b")
	assert.True(t, domainErrors.IsValidationError(err))
}

func TestQueryUseCase_Backend(t *testing.T) {
	h := newHarness(t, entities.BackendInterfaces, containerEnv)
	query := newQuery(h)

	info, err := query.BackendKind(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.BackendInterfaces, info.Backend)
	assert.Equal(t, entities.BackendInterfaces.Description(), info.Description)
	assert.Equal(t, "container", info.Environment)
	assert.Equal(t, 0, h.detector.invalidations)

	_, err = query.Redetect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.detector.invalidations)

	h.detector.err = domainErrors.NewBackendUnavailableError("probe failed", nil)
	_, err = query.BackendKind(context.Background())
	assert.True(t, domainErrors.IsBackendUnavailableError(err))
}

func TestQueryUseCase_ContainerStatus(t *testing.T) {
	h := newHarness(t, entities.BackendNetplan, containerEnv)
	status := newQuery(h).ContainerStatus(context.Background())

	assert.True(t, status.IsContainer)
	assert.Equal(t, "container", status.Environment)
	assert.Equal(t, []string{"/.dockerenv"}, status.Markers)
	assert.Equal(t, []entities.Capability{entities.CapabilityServiceEnable, entities.CapabilityServiceRestart}, status.DisabledCapabilities)
	assert.True(t, status.AvailableTools["ip"])
}

func names(list []entities.NetworkInterface) []string {
	out := make([]string, 0, len(list))
	for _, ni := range list {
		out = append(out, ni.Name)
	}
	return out
}

func TestNetworkStatusUseCase(t *testing.T) {
	setup := func(t *testing.T, backend entities.BackendKind, env entities.ContainerEnvironment) (*harness, *MockHostnameManager, *NetworkStatusUseCase) {
		h := newHarness(t, backend, env)
		eth1 := h.registry.links["eth1"]
		eth1.State = entities.LinkStateDown
		h.registry.links["eth1"] = eth1
		eth0 := h.registry.links["eth0"]
		eth0.Addresses = []string{"192.168.1.100/24"}
		eth0.Mode = entities.ModeStatic
		h.registry.links["eth0"] = eth0
		h.registry.routes = []entities.Route{{Destination: "default", Gateway: "192.168.1.1", Device: "eth0"}}

		hostname := &MockHostnameManager{}
		uc := NewNetworkStatusUseCase(h.host, h.registry, fakeResolver{servers: []string{"8.8.8.8", "1.1.1.1"}},
			hostname, h.services, testLogger())
		return h, hostname, uc
	}

	t.Run("status", func(t *testing.T) {
		_, _, uc := setup(t, entities.BackendNetplan, hostEnv)

		status, err := uc.Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, entities.BackendNetplan, status.Backend)
		assert.Equal(t, 2, status.TotalInterfaces)
		assert.Equal(t, 1, status.ActiveInterfaces)
		assert.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, status.DNSServers)
		assert.Equal(t, "192.168.1.100/24", status.Interfaces["eth0"].IPAddress)
		assert.False(t, status.Interfaces["eth0"].DHCP)
		assert.False(t, status.Interfaces["eth1"].Active)
	})

	t.Run("routes and dns", func(t *testing.T) {
		_, _, uc := setup(t, entities.BackendNetplan, hostEnv)

		routes, err := uc.Routes(context.Background())
		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, "eth0", routes[0].Device)

		dns, err := uc.DNS(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, dns)
	})

	t.Run("system info", func(t *testing.T) {
		_, hostname, uc := setup(t, entities.BackendNetplan, hostEnv)
		hostname.On("Current", mock.Anything).Return("edge-01", nil)

		info, err := uc.SystemInfo(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "edge-01", info.Hostname)
		assert.Equal(t, 4, info.TotalInterfaces)
		assert.Equal(t, 2, info.PublicInterfaces)
		assert.Equal(t, "8.8.8.8", info.PrimaryDNS)
	})

	t.Run("system info without hostname", func(t *testing.T) {
		_, hostname, uc := setup(t, entities.BackendNetplan, hostEnv)
		hostname.On("Current", mock.Anything).Return("", errors.New("no hostname source"))

		info, err := uc.SystemInfo(context.Background())
		require.NoError(t, err)
		assert.Empty(t, info.Hostname)
	})

	t.Run("apply on host", func(t *testing.T) {
		h, _, uc := setup(t, entities.BackendNetplan, hostEnv)
		h.services.On("ApplyAll", mock.Anything, entities.BackendNetplan, true).Return([]string{"netplan apply"}, nil)

		result, err := uc.ApplyConfig(context.Background())
		require.NoError(t, err)
		assert.False(t, result.ServiceSkipped)
		assert.Equal(t, []string{"netplan apply"}, result.Actions)
	})

	t.Run("apply in container", func(t *testing.T) {
		h, _, uc := setup(t, entities.BackendNetplan, containerEnv)
		h.services.On("ApplyAll", mock.Anything, entities.BackendNetplan, false).Return([]string{"netplan generate"}, nil)

		result, err := uc.ApplyConfig(context.Background())
		require.NoError(t, err)
		assert.True(t, result.ServiceSkipped)
		h.services.AssertExpectations(t)
	})

	t.Run("apply without backend", func(t *testing.T) {
		h, _, uc := setup(t, entities.BackendNone, hostEnv)

		_, err := uc.ApplyConfig(context.Background())
		assert.True(t, domainErrors.IsBackendUnavailableError(err))
		assert.Empty(t, h.services.Calls)
	})
}

func TestHostnameUseCase_Set(t *testing.T) {
	tests := []struct {
		name        string
		env         entities.ContainerEnvironment
		input       string
		setupMocks  func(*MockHostnameManager)
		wantErr     bool
		wantChanged bool
	}{
		{
			name:  "change on host uses the service",
			env:   hostEnv,
			input: "  Edge-02 ",
			setupMocks: func(m *MockHostnameManager) {
				m.On("Current", mock.Anything).Return("edge-01", nil)
				m.On("Set", mock.Anything, "edge-02", true).Return([]string{"hostnamectl set-hostname edge-02"}, nil, nil)
			},
			wantChanged: true,
		},
		{
			name:  "change in container avoids the service",
			env:   containerEnv,
			input: "edge-02",
			setupMocks: func(m *MockHostnameManager) {
				m.On("Current", mock.Anything).Return("edge-01", nil)
				m.On("Set", mock.Anything, "edge-02", false).Return([]string{"hostname edge-02"}, []string{"hostnamectl skipped"}, nil)
			},
			wantChanged: true,
		},
		{
			name:  "unchanged",
			env:   hostEnv,
			input: "edge-01",
			setupMocks: func(m *MockHostnameManager) {
				m.On("Current", mock.Anything).Return("edge-01", nil)
			},
		},
		{
			name:       "invalid",
			env:        hostEnv,
			input:      "-bad_name",
			setupMocks: func(m *MockHostnameManager) {},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, entities.BackendNetplan, tt.env)
			manager := &MockHostnameManager{}
			tt.setupMocks(manager)
			uc := NewHostnameUseCase(h.host, manager, testLogger())

			result, err := uc.Set(context.Background(), tt.input)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domainErrors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, result.Changed)
			manager.AssertExpectations(t)
		})
	}
}

func TestHostContext_Lock(t *testing.T) {
	host := NewHostContext(&fakeDetector{}, hostEnv, testLogger())

	unlock := host.Lock("eth0")
	acquired := make(chan struct{})
	go func() {
		release := host.Lock("eth0")
		close(acquired)
		release()
	}()

	otherDone := make(chan struct{})
	go func() {
		release := host.Lock("eth1")
		release()
		close(otherDone)
	}()
	<-otherDone

	select {
	case <-acquired:
		t.Fatal("second lock on eth0 acquired while held")
	default:
	}
	unlock()
	<-acquired
}

func TestHostContext_ServiceGate(t *testing.T) {
	assert.True(t, NewHostContext(&fakeDetector{}, hostEnv, testLogger()).ServiceGate(entities.CapabilityServiceRestart))
	assert.False(t, NewHostContext(&fakeDetector{}, containerEnv, testLogger()).ServiceGate(entities.CapabilityServiceRestart))

	withManager := entities.NewContainerEnvironment(true, true, []string{"/.dockerenv"})
	assert.True(t, NewHostContext(&fakeDetector{}, withManager, testLogger()).ServiceGate(entities.CapabilityServiceEnable))
}

func TestHistoryUseCase_List(t *testing.T) {
	repo := &memoryHistory{}
	for i := 0; i < 30; i++ {
		require.NoError(t, repo.Record(context.Background(), entities.HistoryRecord{Interface: "eth0", Operation: OperationConfigure}))
	}
	uc := NewHistoryUseCase(repo)

	records, err := uc.List(context.Background(), "eth0", 0)
	require.NoError(t, err)
	assert.Len(t, records, defaultHistoryLimit)

	records, err = uc.List(context.Background(), "eth0", 5)
	require.NoError(t, err)
	assert.Len(t, records, 5)

	records, err = uc.List(context.Background(), "eth1", 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryRecorder_FailureDoesNotPropagate(t *testing.T) {
	repo := &memoryHistory{err: errors.New("database is down")}
	recorder := newHistoryRecorder(repo, testLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		recorder.record(context.Background(), entities.HistoryRecord{Interface: "eth0"}, domainErrors.NewNotPublicError("eth0"))
	}()
	wg.Wait()

	assert.Empty(t, repo.all())
	newHistoryRecorder(nil, testLogger()).record(context.Background(), entities.HistoryRecord{}, nil)
}
