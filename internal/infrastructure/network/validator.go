package network

import (
	"fmt"
	"net/netip"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
)

// ConfigValidator checks artifacts structurally. It never writes files or runs commands.
type ConfigValidator struct{}

// NewConfigValidator creates a new ConfigValidator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate checks one artifact variant
func (v *ConfigValidator) Validate(content entities.BackendArtifact) error {
	switch a := content.(type) {
	case *entities.NetplanEthernet:
		if a == nil {
			return errors.NewSyntaxError("empty netplan artifact", nil)
		}
		return validateNetplanEthernet(a)
	case *entities.InterfacesStanza:
		if a == nil {
			return errors.NewSyntaxError("empty interfaces stanza", nil)
		}
		return validateStanza(a)
	case *entities.NMConnection:
		if a == nil {
			return errors.NewSyntaxError("empty NetworkManager connection", nil)
		}
		return validateNMConnection(a)
	case nil:
		return errors.NewSyntaxError("no artifact content", nil)
	default:
		return errors.NewSyntaxError(fmt.Sprintf("unsupported artifact kind %s", content.Kind()), nil)
	}
}

// ValidateContent parses rendered content of kind and validates the result
func (v *ConfigValidator) ValidateContent(kind entities.ArtifactKind, content []byte) (entities.BackendArtifact, error) {
	var artifact entities.BackendArtifact
	var err error

	switch kind {
	case entities.ArtifactNetplan:
		artifact, err = decodeNetplanArtifact(content)
	case entities.ArtifactInterfaces:
		artifact, err = decodeStanza(content)
	case entities.ArtifactNMConnection:
		artifact, err = decodeNMArtifact(content)
	default:
		return nil, errors.NewSyntaxError(fmt.Sprintf("unsupported artifact kind %q", kind), nil)
	}
	if err != nil {
		return nil, err
	}

	if err := v.Validate(artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}

func validateNetplanEthernet(a *entities.NetplanEthernet) error {
	if a.Interface == "" {
		return errors.NewSyntaxError("netplan ethernet has no interface name", nil)
	}
	if a.DHCP4 && len(a.Addresses) > 0 {
		return errors.NewSyntaxError(fmt.Sprintf("%s: dhcp4 and static addresses are mutually exclusive", a.Interface), nil)
	}
	if !a.DHCP4 && len(a.Addresses) == 0 {
		return errors.NewSyntaxError(fmt.Sprintf("%s: either dhcp4 or addresses is required", a.Interface), nil)
	}
	for _, addr := range a.Addresses {
		if err := checkIPv4Prefix(addr); err != nil {
			return errors.NewSyntaxError(a.Interface+": invalid address", err)
		}
	}
	if a.Gateway != "" {
		if a.DHCP4 {
			return errors.NewSyntaxError(fmt.Sprintf("%s: default route requires static addressing", a.Interface), nil)
		}
		if err := checkIPv4(a.Gateway); err != nil {
			return errors.NewSyntaxError(a.Interface+": invalid default route via", err)
		}
	}
	return checkNameservers(a.Interface, a.Nameservers)
}

func validateStanza(s *entities.InterfacesStanza) error {
	if s.Interface == "" {
		return errors.NewSyntaxError("iface stanza has no interface name", nil)
	}
	switch s.Method {
	case entities.StanzaMethodStatic:
		if s.Address == "" || s.Netmask == "" {
			return errors.NewSyntaxError(fmt.Sprintf("%s: static stanza requires address and netmask", s.Interface), nil)
		}
		if err := checkIPv4(s.Address); err != nil {
			return errors.NewSyntaxError(s.Interface+": invalid address", err)
		}
		if _, err := entities.ParseNetmask(s.Netmask); err != nil {
			return errors.NewSyntaxError(s.Interface+": invalid netmask", err)
		}
		if s.Gateway != "" {
			if err := checkIPv4(s.Gateway); err != nil {
				return errors.NewSyntaxError(s.Interface+": invalid gateway", err)
			}
		}
	case entities.StanzaMethodDHCP:
		if s.Address != "" || s.Gateway != "" {
			return errors.NewSyntaxError(fmt.Sprintf("%s: dhcp stanza must not carry static options", s.Interface), nil)
		}
	default:
		return errors.NewSyntaxError(fmt.Sprintf("%s: unsupported method %q", s.Interface, s.Method), nil)
	}
	return checkNameservers(s.Interface, s.DNSNameservers)
}

func validateNMConnection(c *entities.NMConnection) error {
	if c.ConnectionName == "" || c.Interface == "" {
		return errors.NewSyntaxError("connection requires id and interface-name", nil)
	}
	switch c.Method {
	case entities.NMMethodManual:
		if len(c.Addresses) == 0 {
			return errors.NewSyntaxError(fmt.Sprintf("%s: manual method requires addresses", c.ConnectionName), nil)
		}
	case entities.NMMethodAuto:
		if len(c.Addresses) > 0 {
			return errors.NewSyntaxError(fmt.Sprintf("%s: auto method must not carry addresses", c.ConnectionName), nil)
		}
	default:
		return errors.NewSyntaxError(fmt.Sprintf("%s: unsupported ipv4 method %q", c.ConnectionName, c.Method), nil)
	}
	for _, addr := range c.Addresses {
		if err := checkIPv4Prefix(addr); err != nil {
			return errors.NewSyntaxError(c.ConnectionName+": invalid address", err)
		}
	}
	if c.Gateway != "" {
		if err := checkIPv4(c.Gateway); err != nil {
			return errors.NewSyntaxError(c.ConnectionName+": invalid gateway", err)
		}
	}
	return checkNameservers(c.ConnectionName, c.DNS)
}

func checkIPv4(value string) error {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return err
	}
	if !addr.Is4() {
		return fmt.Errorf("%s is not an IPv4 address", value)
	}
	return nil
}

func checkIPv4Prefix(value string) error {
	prefix, err := netip.ParsePrefix(value)
	if err != nil {
		return err
	}
	if !prefix.Addr().Is4() {
		return fmt.Errorf("%s is not an IPv4 prefix", value)
	}
	return nil
}

func checkNameservers(owner string, servers []string) error {
	for _, server := range servers {
		if _, err := netip.ParseAddr(server); err != nil {
			return errors.NewSyntaxError(fmt.Sprintf("%s: invalid nameserver %q", owner, server), err)
		}
	}
	return nil
}
