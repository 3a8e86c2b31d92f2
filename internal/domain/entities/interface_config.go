package entities

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

var (
	ErrMissingAddress = errors.New("static configuration requires ip_address")
	ErrMissingNetmask = errors.New("static configuration requires netmask")
	ErrInvalidAddress = errors.New("invalid IPv4 address")
	ErrInvalidNetmask = errors.New("invalid netmask")
	ErrInvalidGateway = errors.New("invalid gateway")
	ErrInvalidDNS     = errors.New("invalid DNS server")
)

// InterfaceConfig is the desired state for one interface
type InterfaceConfig struct {
	IPAddress  string   `json:"ip_address,omitempty"`
	Netmask    string   `json:"netmask,omitempty"`
	Gateway    string   `json:"gateway,omitempty"`
	DNSServers []string `json:"dns_servers,omitempty"`
	DHCP       bool     `json:"is_dhcp"`
}

// Validate checks the DHCP/static invariant and the syntax of every field.
// DHCP configurations ignore the static fields entirely.
func (c InterfaceConfig) Validate() error {
	for _, dns := range c.DNSServers {
		if _, err := netip.ParseAddr(strings.TrimSpace(dns)); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDNS, dns)
		}
	}
	if c.DHCP {
		return nil
	}

	if strings.TrimSpace(c.IPAddress) == "" {
		return ErrMissingAddress
	}
	if strings.TrimSpace(c.Netmask) == "" {
		return ErrMissingNetmask
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(c.IPAddress))
	if err != nil || !addr.Is4() {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, c.IPAddress)
	}
	if _, err := ParseNetmask(c.Netmask); err != nil {
		return err
	}
	if c.Gateway != "" {
		gw, err := netip.ParseAddr(strings.TrimSpace(c.Gateway))
		if err != nil || !gw.Is4() {
			return fmt.Errorf("%w: %q", ErrInvalidGateway, c.Gateway)
		}
	}
	return nil
}

// Normalize returns a copy with whitespace trimmed and, for DHCP, the static fields dropped
func (c InterfaceConfig) Normalize() InterfaceConfig {
	out := InterfaceConfig{DHCP: c.DHCP}
	for _, dns := range c.DNSServers {
		if d := strings.TrimSpace(dns); d != "" {
			out.DNSServers = append(out.DNSServers, d)
		}
	}
	if c.DHCP {
		return out
	}
	out.IPAddress = strings.TrimSpace(c.IPAddress)
	out.Netmask = strings.TrimSpace(c.Netmask)
	out.Gateway = strings.TrimSpace(c.Gateway)
	if bits, err := ParseNetmask(out.Netmask); err == nil {
		out.Netmask = PrefixToNetmask(bits)
	}
	return out
}

// PrefixLength returns the prefix length of the static netmask
func (c InterfaceConfig) PrefixLength() (int, error) {
	return ParseNetmask(c.Netmask)
}

// CIDR returns the static address in CIDR notation, e.g. 192.168.1.100/24
func (c InterfaceConfig) CIDR() (string, error) {
	bits, err := c.PrefixLength()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%d", strings.TrimSpace(c.IPAddress), bits), nil
}

// Mode returns the address mode this configuration requests
func (c InterfaceConfig) Mode() AddressMode {
	if c.DHCP {
		return ModeDHCP
	}
	return ModeStatic
}

// ParseNetmask accepts a dotted quad (255.255.255.0), a prefix length (24) or /24
func ParseNetmask(mask string) (int, error) {
	mask = strings.TrimPrefix(strings.TrimSpace(mask), "/")
	if mask == "" {
		return 0, ErrMissingNetmask
	}
	if !strings.Contains(mask, ".") {
		bits, err := strconv.Atoi(mask)
		if err != nil || bits < 0 || bits > 32 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNetmask, mask)
		}
		return bits, nil
	}

	addr, err := netip.ParseAddr(mask)
	if err != nil || !addr.Is4() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNetmask, mask)
	}
	b := addr.As4()
	value := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])

	bits := 0
	for value&0x80000000 != 0 {
		bits++
		value <<= 1
	}
	// remaining bits must all be zero for a contiguous mask
	if value != 0 {
		return 0, fmt.Errorf("%w: %q is not contiguous", ErrInvalidNetmask, mask)
	}
	return bits, nil
}

// PrefixToNetmask converts a prefix length to a dotted quad
func PrefixToNetmask(bits int) string {
	if bits <= 0 {
		return "0.0.0.0"
	}
	if bits > 32 {
		bits = 32
	}
	mask := ^uint32(0) << (32 - bits)
	return fmt.Sprintf("%d.%d.%d.%d", byte(mask>>24), byte(mask>>16), byte(mask>>8), byte(mask))
}
