package entities

// NetworkInterface is a snapshot of one kernel interface, read fresh on every query
type NetworkInterface struct {
	Name       string        `json:"name"`
	Kind       InterfaceKind `json:"kind"`
	LinkType   string        `json:"link_type"`
	MacAddress string        `json:"mac_address,omitempty"`
	MTU        int           `json:"mtu"`
	State      LinkState     `json:"state"`
	Addresses  []string      `json:"addresses"`
	Gateway    string        `json:"gateway,omitempty"`
	Mode       AddressMode   `json:"mode"`
}

// InterfaceKind is derived from the interface name, never stored
type InterfaceKind string

const (
	KindPublic  InterfaceKind = "public"
	KindVirtual InterfaceKind = "virtual"
)

// LinkState is the operational state of a link
type LinkState string

const (
	LinkStateUp   LinkState = "up"
	LinkStateDown LinkState = "down"
)

// AddressMode describes how the interface obtains its IPv4 address
type AddressMode string

const (
	ModeDHCP    AddressMode = "dhcp"
	ModeStatic  AddressMode = "static"
	ModeUnknown AddressMode = "unknown"
)

// IsPublic reports whether the interface may be configured
func (ni *NetworkInterface) IsPublic() bool {
	return ni.Kind == KindPublic
}

// IsUp reports whether the link is administratively up
func (ni *NetworkInterface) IsUp() bool {
	return ni.State == LinkStateUp
}

// PrimaryAddress returns the first IPv4 address in CIDR form, or ""
func (ni *NetworkInterface) PrimaryAddress() string {
	if len(ni.Addresses) == 0 {
		return ""
	}
	return ni.Addresses[0]
}
