package network

import (
	"fmt"
	"os"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
)

// ConfigFileGenerator builds the persisted artifact for one interface.
// Output is a pure function of its inputs.
type ConfigFileGenerator struct {
	paths Paths
}

// NewConfigFileGenerator creates a new ConfigFileGenerator
func NewConfigFileGenerator(paths Paths) *ConfigFileGenerator {
	return &ConfigFileGenerator{paths: paths}
}

// Generate renders cfg for backend. An existing artifact keeps its path.
func (g *ConfigFileGenerator) Generate(backend entities.BackendKind, name string, cfg entities.InterfaceConfig, existing *entities.GeneratedConfigArtifact) (*entities.GeneratedConfigArtifact, error) {
	cfg = cfg.Normalize()

	var cidr string
	if !cfg.DHCP {
		var err error
		if cidr, err = cfg.CIDR(); err != nil {
			return nil, errors.NewValidationError("cannot derive address prefix", err)
		}
	}

	artifact := &entities.GeneratedConfigArtifact{
		Interface:       name,
		Interfaces:      []string{name},
		Backend:         backend,
		SystemGenerated: true,
	}

	switch backend {
	case entities.BackendNetplan:
		content := &entities.NetplanEthernet{
			Interface:   name,
			DHCP4:       cfg.DHCP,
			Nameservers: cfg.DNSServers,
		}
		if !cfg.DHCP {
			content.Addresses = []string{cidr}
			content.Gateway = cfg.Gateway
		}
		rendered, err := renderNetplan(content)
		if err != nil {
			return nil, errors.NewPersistenceError(fmt.Sprintf("failed to render netplan config for %s", name), err)
		}
		artifact.Content = content
		artifact.Rendered = rendered
		artifact.Path = g.paths.NetplanFile(name)
		artifact.Mode = os.FileMode(constants.NetplanFilePermission)

	case entities.BackendInterfaces:
		content := &entities.InterfacesStanza{
			Interface:      name,
			Method:         entities.StanzaMethodDHCP,
			DNSNameservers: cfg.DNSServers,
		}
		if !cfg.DHCP {
			content.Method = entities.StanzaMethodStatic
			content.Address = cfg.IPAddress
			content.Netmask = cfg.Netmask
			content.Gateway = cfg.Gateway
		}
		artifact.Content = content
		artifact.Rendered = renderStanza(content)
		artifact.Path = g.paths.InterfacesFile
		artifact.Mode = os.FileMode(constants.InterfacesFilePermission)

	case entities.BackendNetworkManager:
		content := &entities.NMConnection{
			ConnectionName: NMConnectionName(name),
			Interface:      name,
			Method:         entities.NMMethodAuto,
			DNS:            cfg.DNSServers,
		}
		if !cfg.DHCP {
			content.Method = entities.NMMethodManual
			content.Addresses = []string{cidr}
			content.Gateway = cfg.Gateway
		}
		artifact.Content = content
		artifact.Rendered = renderKeyfile(content)
		artifact.Path = g.paths.NMKeyfile(name)
		artifact.Mode = os.FileMode(constants.NetplanFilePermission)

	default:
		return nil, errors.NewBackendUnavailableError(fmt.Sprintf("no persistent configuration backend for %s", name), nil)
	}

	if existing != nil && existing.Backend == backend && existing.Path != "" {
		artifact.Path = existing.Path
	}
	artifact.Size = int64(len(artifact.Rendered))

	return artifact, nil
}
