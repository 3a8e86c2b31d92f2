package entities

import "sort"

// BackendKind is the persistence mechanism that is authoritative on this host
type BackendKind string

const (
	BackendNetplan        BackendKind = "netplan"
	BackendInterfaces     BackendKind = "interfaces"
	BackendNetworkManager BackendKind = "networkmanager"
	BackendNone           BackendKind = "none"
)

// Description returns a human readable label for the backend
func (b BackendKind) Description() string {
	switch b {
	case BackendNetplan:
		return "Netplan declarative YAML configuration"
	case BackendInterfaces:
		return "Debian/Ubuntu traditional /etc/network/interfaces"
	case BackendNetworkManager:
		return "NetworkManager daemon"
	default:
		return "No persistent configuration backend"
	}
}

// Capability is a service-level action that a constrained host may not support
type Capability string

const (
	CapabilityServiceRestart Capability = "service-restart"
	CapabilityServiceEnable  Capability = "service-enable"
)

// ContainerEnvironment describes whether the process runs in a constrained container
type ContainerEnvironment struct {
	IsContainer    bool                `json:"is_container"`
	Overridden     bool                `json:"overridden"`
	Markers        []string            `json:"markers,omitempty"`
	ServiceManager bool                `json:"service_manager"`
	Disabled       map[Capability]bool `json:"-"`
}

// NewContainerEnvironment derives the disabled capability set from the classification
func NewContainerEnvironment(isContainer, serviceManager bool, markers []string) ContainerEnvironment {
	env := ContainerEnvironment{
		IsContainer:    isContainer,
		Markers:        markers,
		ServiceManager: serviceManager,
		Disabled:       map[Capability]bool{},
	}
	if isContainer && !serviceManager {
		env.Disabled[CapabilityServiceRestart] = true
		env.Disabled[CapabilityServiceEnable] = true
	}
	return env
}

// Allows reports whether a service-level capability may run on this host
func (e ContainerEnvironment) Allows(c Capability) bool {
	return !e.Disabled[c]
}

// DisabledCapabilities returns the disabled capabilities in stable order
func (e ContainerEnvironment) DisabledCapabilities() []Capability {
	caps := make([]Capability, 0, len(e.Disabled))
	for c, off := range e.Disabled {
		if off {
			caps = append(caps, c)
		}
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// Label returns the environment name shown to operators
func (e ContainerEnvironment) Label() string {
	if e.IsContainer {
		return "container"
	}
	return "host"
}

// DetectionResult is the cached outcome of backend detection
type DetectionResult struct {
	Backend   BackendKind          `json:"backend"`
	Container ContainerEnvironment `json:"container"`
	LiveApply bool                 `json:"live_apply"`
}
