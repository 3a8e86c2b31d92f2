package network

import (
	"fmt"
	"path/filepath"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
)

// Paths holds every host location the network adapters touch
type Paths struct {
	NetplanDir       string
	InterfacesFile   string
	NMConnectionsDir string
	ResolvConf       string
	HostnameFile     string
	HostsFile        string
}

// DefaultPaths returns the standard Linux locations
func DefaultPaths() Paths {
	return Paths{
		NetplanDir:       constants.NetplanConfigDir,
		InterfacesFile:   constants.InterfacesFile,
		NMConnectionsDir: constants.NetworkManagerDir,
		ResolvConf:       constants.ResolvConf,
		HostnameFile:     constants.HostnameFile,
		HostsFile:        constants.HostsFile,
	}
}

// NetplanFile returns the generated netplan file for an interface
func (p Paths) NetplanFile(name string) string {
	return filepath.Join(p.NetplanDir, fmt.Sprintf("%s-%s-%s.yaml", constants.NetplanFilePriority, constants.ArtifactPrefix, name))
}

// NMConnectionName returns the generated NetworkManager connection id for an interface
func NMConnectionName(name string) string {
	return constants.ArtifactPrefix + "-" + name
}

// NMKeyfile returns the generated NetworkManager keyfile for an interface
func (p Paths) NMKeyfile(name string) string {
	return filepath.Join(p.NMConnectionsDir, NMConnectionName(name)+".nmconnection")
}
