package usecases

import (
	"context"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// InterfaceStatus is the per-interface line of the network status
type InterfaceStatus struct {
	IPAddress string               `json:"ip_address,omitempty"`
	Active    bool                 `json:"active"`
	DHCP      bool                 `json:"dhcp"`
	Mode      entities.AddressMode `json:"mode"`
}

// NetworkStatus summarizes the public interfaces of the host
type NetworkStatus struct {
	Backend          entities.BackendKind       `json:"config_type"`
	Environment      string                     `json:"environment"`
	TotalInterfaces  int                        `json:"total_interfaces"`
	ActiveInterfaces int                        `json:"active_interfaces"`
	DNSServers       []string                   `json:"dns_servers"`
	Interfaces       map[string]InterfaceStatus `json:"interfaces"`
}

// SystemInfo is the host overview
type SystemInfo struct {
	Hostname         string               `json:"hostname"`
	Backend          entities.BackendKind `json:"config_type"`
	Environment      string               `json:"environment"`
	TotalInterfaces  int                  `json:"total_interfaces"`
	PublicInterfaces int                  `json:"public_interfaces"`
	PrimaryDNS       string               `json:"primary_dns,omitempty"`
}

// NetworkStatusUseCase reports host-wide network state and reloads the backend
type NetworkStatusUseCase struct {
	host     *HostContext
	registry interfaces.InterfaceRegistry
	resolver interfaces.ResolverReader
	hostname interfaces.HostnameManager
	services interfaces.ServiceController
	logger   *logrus.Logger
}

// NewNetworkStatusUseCase creates a new NetworkStatusUseCase
func NewNetworkStatusUseCase(
	host *HostContext,
	registry interfaces.InterfaceRegistry,
	resolver interfaces.ResolverReader,
	hostname interfaces.HostnameManager,
	serviceController interfaces.ServiceController,
	logger *logrus.Logger,
) *NetworkStatusUseCase {
	return &NetworkStatusUseCase{
		host:     host,
		registry: registry,
		resolver: resolver,
		hostname: hostname,
		services: serviceController,
		logger:   logger,
	}
}

// Status returns the summary of every public interface
func (uc *NetworkStatusUseCase) Status(ctx context.Context) (*NetworkStatus, error) {
	list, err := uc.registry.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	status := &NetworkStatus{
		Backend:         entities.BackendNone,
		Environment:     uc.host.Container().Label(),
		TotalInterfaces: len(list),
		DNSServers:      uc.nameservers(),
		Interfaces:      make(map[string]InterfaceStatus, len(list)),
	}
	if detection, err := uc.host.Detection(ctx); err == nil {
		status.Backend = detection.Backend
	}

	for _, ni := range list {
		if ni.IsUp() {
			status.ActiveInterfaces++
		}
		status.Interfaces[ni.Name] = InterfaceStatus{
			IPAddress: ni.PrimaryAddress(),
			Active:    ni.IsUp(),
			DHCP:      ni.Mode == entities.ModeDHCP,
			Mode:      ni.Mode,
		}
	}
	return status, nil
}

// DNS returns the resolver nameservers
func (uc *NetworkStatusUseCase) DNS(ctx context.Context) ([]string, error) {
	return uc.resolver.Nameservers()
}

// Routes returns the IPv4 routing table
func (uc *NetworkStatusUseCase) Routes(ctx context.Context) ([]entities.Route, error) {
	return uc.registry.Routes(ctx)
}

// SystemInfo returns the host overview. Missing pieces are left empty.
func (uc *NetworkStatusUseCase) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	all, err := uc.registry.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	info := &SystemInfo{
		Backend:         entities.BackendNone,
		Environment:     uc.host.Container().Label(),
		TotalInterfaces: len(all),
	}
	for _, ni := range all {
		if ni.IsPublic() {
			info.PublicInterfaces++
		}
	}
	if detection, err := uc.host.Detection(ctx); err == nil {
		info.Backend = detection.Backend
	}
	if name, err := uc.hostname.Current(ctx); err == nil {
		info.Hostname = name
	} else {
		uc.logger.WithError(err).Warn("Failed to read hostname")
	}
	if servers := uc.nameservers(); len(servers) > 0 {
		info.PrimaryDNS = servers[0]
	}
	return info, nil
}

// ApplyConfig reloads the whole backend. Without a service manager only offline steps run.
func (uc *NetworkStatusUseCase) ApplyConfig(ctx context.Context) (*entities.ApplyResult, error) {
	detection, err := uc.host.Detection(ctx)
	if err != nil {
		return nil, err
	}
	if detection.Backend == entities.BackendNone {
		return nil, errors.NewBackendUnavailableError("no persistent configuration backend to apply", nil)
	}

	allowed := uc.host.ServiceGate(entities.CapabilityServiceRestart)
	actions, err := uc.services.ApplyAll(context.WithoutCancel(ctx), detection.Backend, allowed)
	if err != nil {
		return nil, err
	}
	if actions == nil {
		actions = []string{}
	}

	uc.logger.WithFields(logrus.Fields{
		"backend":         detection.Backend,
		"service_skipped": !allowed,
	}).Info("Backend configuration applied")

	return &entities.ApplyResult{
		Backend:        detection.Backend,
		Actions:        actions,
		ServiceSkipped: !allowed,
	}, nil
}

func (uc *NetworkStatusUseCase) nameservers() []string {
	servers, err := uc.resolver.Nameservers()
	if err != nil {
		uc.logger.WithError(err).Debug("Failed to read resolver configuration")
		return []string{}
	}
	return servers
}
