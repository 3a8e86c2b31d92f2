package network

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"

	"gopkg.in/yaml.v3"
)

type netplanDocument struct {
	Network netplanNetwork `yaml:"network"`
}

type netplanNetwork struct {
	Version   int                      `yaml:"version"`
	Renderer  string                   `yaml:"renderer,omitempty"`
	Ethernets map[string]netplanDevice `yaml:"ethernets,omitempty"`
	Wifis     map[string]netplanDevice `yaml:"wifis,omitempty"`
	Bonds     map[string]netplanDevice `yaml:"bonds,omitempty"`
	Bridges   map[string]netplanDevice `yaml:"bridges,omitempty"`
	Vlans     map[string]netplanDevice `yaml:"vlans,omitempty"`
}

type netplanDevice struct {
	DHCP4       *bool               `yaml:"dhcp4,omitempty"`
	Addresses   []string            `yaml:"addresses,omitempty"`
	Gateway4    string              `yaml:"gateway4,omitempty"`
	Routes      []netplanRoute      `yaml:"routes,omitempty"`
	Nameservers *netplanNameservers `yaml:"nameservers,omitempty"`
}

type netplanRoute struct {
	To  string `yaml:"to"`
	Via string `yaml:"via"`
}

type netplanNameservers struct {
	Addresses []string `yaml:"addresses,omitempty"`
}

// renderNetplan produces the generated file content, marker line first
func renderNetplan(e *entities.NetplanEthernet) ([]byte, error) {
	dhcp := e.DHCP4
	device := netplanDevice{DHCP4: &dhcp}
	if !e.DHCP4 {
		device.Addresses = append([]string(nil), e.Addresses...)
		if e.Gateway != "" {
			device.Routes = []netplanRoute{{To: "default", Via: e.Gateway}}
		}
	}
	if len(e.Nameservers) > 0 {
		device.Nameservers = &netplanNameservers{Addresses: append([]string(nil), e.Nameservers...)}
	}

	doc := netplanDocument{
		Network: netplanNetwork{
			Version:   2,
			Ethernets: map[string]netplanDevice{e.Interface: device},
		},
	}

	var buf bytes.Buffer
	buf.WriteString(constants.GeneratedMarker + "\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode netplan document: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode netplan document: %w", err)
	}
	return buf.Bytes(), nil
}

func parseNetplan(content []byte) (*netplanDocument, error) {
	var doc netplanDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse netplan YAML: %w", err)
	}
	return &doc, nil
}

// hasGeneratedMarker reports whether the first line is the generated-file marker
func hasGeneratedMarker(content []byte) bool {
	line, _, _ := bytes.Cut(content, []byte("\n"))
	return strings.TrimSpace(string(line)) == constants.GeneratedMarker
}

// interfaceNames returns every device the document defines, sorted
func (d *netplanDocument) interfaceNames() []string {
	seen := map[string]bool{}
	for _, section := range []map[string]netplanDevice{
		d.Network.Ethernets, d.Network.Wifis, d.Network.Bonds, d.Network.Bridges, d.Network.Vlans,
	} {
		for name := range section {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// device finds name in any device section
func (d *netplanDocument) device(name string) (netplanDevice, bool) {
	for _, section := range []map[string]netplanDevice{
		d.Network.Ethernets, d.Network.Wifis, d.Network.Bonds, d.Network.Bridges, d.Network.Vlans,
	} {
		if dev, ok := section[name]; ok {
			return dev, true
		}
	}
	return netplanDevice{}, false
}

// modeOf returns the address mode a document declares for name
func (d *netplanDocument) modeOf(name string) entities.AddressMode {
	dev, ok := d.device(name)
	if !ok {
		return entities.ModeUnknown
	}
	if dev.DHCP4 != nil && *dev.DHCP4 {
		return entities.ModeDHCP
	}
	if len(dev.Addresses) > 0 {
		return entities.ModeStatic
	}
	return entities.ModeUnknown
}

func netplanEthernetFrom(name string, dev netplanDevice) *entities.NetplanEthernet {
	e := &entities.NetplanEthernet{
		Interface: name,
		DHCP4:     dev.DHCP4 != nil && *dev.DHCP4,
		Addresses: dev.Addresses,
		Gateway:   dev.Gateway4,
	}
	for _, route := range dev.Routes {
		if isDefaultDestination(route.To) {
			e.Gateway = route.Via
			break
		}
	}
	if dev.Nameservers != nil {
		e.Nameservers = dev.Nameservers.Addresses
	}
	return e
}

// decodeNetplanArtifact parses generated content into its variant.
// Document-level structure is checked here; field syntax by the validator.
func decodeNetplanArtifact(content []byte) (*entities.NetplanEthernet, error) {
	doc, err := parseNetplan(content)
	if err != nil {
		return nil, errors.NewSyntaxError("invalid netplan document", err)
	}
	if doc.Network.Version != 2 {
		return nil, errors.NewSyntaxError(fmt.Sprintf("network.version must be 2, got %d", doc.Network.Version), nil)
	}
	if len(doc.Network.Wifis)+len(doc.Network.Bonds)+len(doc.Network.Bridges)+len(doc.Network.Vlans) > 0 {
		return nil, errors.NewSyntaxError("generated netplan file may only define ethernets", nil)
	}
	if len(doc.Network.Ethernets) != 1 {
		return nil, errors.NewSyntaxError(fmt.Sprintf("expected exactly one ethernet, got %d", len(doc.Network.Ethernets)), nil)
	}

	var name string
	var dev netplanDevice
	for n, d := range doc.Network.Ethernets {
		name, dev = n, d
	}
	for _, route := range dev.Routes {
		if !isDefaultDestination(route.To) {
			return nil, errors.NewSyntaxError(fmt.Sprintf("unexpected route to %q", route.To), nil)
		}
	}

	return netplanEthernetFrom(name, dev), nil
}

func isDefaultDestination(to string) bool {
	return to == "default" || to == "0.0.0.0/0"
}
