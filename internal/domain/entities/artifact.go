package entities

import (
	"os"
	"time"
)

// ArtifactKind tags the shape of a BackendArtifact
type ArtifactKind string

const (
	ArtifactNetplan      ArtifactKind = "netplan-yaml"
	ArtifactInterfaces   ArtifactKind = "interfaces-stanza"
	ArtifactNMConnection ArtifactKind = "nm-connection"
)

// BackendArtifact is the closed set of persisted configuration shapes.
// Implementations: *NetplanEthernet, *InterfacesStanza, *NMConnection.
type BackendArtifact interface {
	Kind() ArtifactKind
	InterfaceName() string
	isBackendArtifact()
}

// NetplanEthernet is one interface entry under network.ethernets
type NetplanEthernet struct {
	Interface   string
	DHCP4       bool
	Addresses   []string
	Gateway     string
	Nameservers []string
}

func (*NetplanEthernet) Kind() ArtifactKind      { return ArtifactNetplan }
func (a *NetplanEthernet) InterfaceName() string { return a.Interface }
func (*NetplanEthernet) isBackendArtifact()      {}

// InterfacesStanza is an ifupdown "auto/iface" block
type InterfacesStanza struct {
	Interface      string
	Method         string
	Address        string
	Netmask        string
	Gateway        string
	DNSNameservers []string
}

func (*InterfacesStanza) Kind() ArtifactKind      { return ArtifactInterfaces }
func (a *InterfacesStanza) InterfaceName() string { return a.Interface }
func (*InterfacesStanza) isBackendArtifact()      {}

// NMConnection is a NetworkManager ethernet connection profile
type NMConnection struct {
	ConnectionName string
	Interface      string
	Method         string
	Addresses      []string
	Gateway        string
	DNS            []string
}

func (*NMConnection) Kind() ArtifactKind      { return ArtifactNMConnection }
func (a *NMConnection) InterfaceName() string { return a.Interface }
func (*NMConnection) isBackendArtifact()      {}

// Interface stanza methods and NetworkManager ipv4 methods
const (
	StanzaMethodStatic = "static"
	StanzaMethodDHCP   = "dhcp"
	NMMethodManual     = "manual"
	NMMethodAuto       = "auto"
)

// GeneratedConfigArtifact is a persisted config file or stanza.
// SystemGenerated is true only for artifacts created by this service.
type GeneratedConfigArtifact struct {
	Interface       string          `json:"interface"`
	Interfaces      []string        `json:"interfaces,omitempty"`
	Backend         BackendKind     `json:"backend"`
	Path            string          `json:"path"`
	SystemGenerated bool            `json:"system_generated"`
	Content         BackendArtifact `json:"-"`
	Rendered        []byte          `json:"-"`
	Size            int64           `json:"size"`
	Mode            os.FileMode     `json:"-"`
	ModTime         time.Time       `json:"modified,omitempty"`
	ParseError      string          `json:"error,omitempty"`
}

// Permissions returns the octal permission bits, e.g. "600"
func (a GeneratedConfigArtifact) Permissions() string {
	if a.Mode == 0 {
		return ""
	}
	perm := a.Mode.Perm()
	return string([]byte{'0' + byte(perm>>6&7), '0' + byte(perm>>3&7), '0' + byte(perm&7)})
}

// Defines reports whether the artifact configures the named interface
func (a GeneratedConfigArtifact) Defines(name string) bool {
	if a.Interface == name {
		return true
	}
	for _, n := range a.Interfaces {
		if n == name {
			return true
		}
	}
	return false
}
