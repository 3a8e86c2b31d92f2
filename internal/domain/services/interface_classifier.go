package services

import (
	"fmt"
	"regexp"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
)

// publicNamePatterns is the allow-list of physical NIC naming schemes:
// traditional ethN, systemd predictable names, biosdevname and wireless/WWAN devices.
var publicNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^eth\d+$`),
	regexp.MustCompile(`^ens\d+$`),
	regexp.MustCompile(`^enp\d+s\d+$`),
	regexp.MustCompile(`^eno\d+$`),
	regexp.MustCompile(`^enx[0-9a-f]{12}$`),
	regexp.MustCompile(`^em\d+$`),
	regexp.MustCompile(`^p\d+p\d+$`),
	regexp.MustCompile(`^wlan\d+$`),
	regexp.MustCompile(`^wlp\d+s\d+$`),
	regexp.MustCompile(`^wlo\d+$`),
	regexp.MustCompile(`^wwp\d+s\d+$`),
}

// kernel IFNAMSIZ is 16 including the terminating NUL
const maxInterfaceNameLength = 15

var interfaceNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.:@-]+$`)

// InterfaceClassifier decides which interfaces are eligible for configuration.
// Classification is a pure function of the name.
type InterfaceClassifier struct{}

// NewInterfaceClassifier creates a new InterfaceClassifier
func NewInterfaceClassifier() *InterfaceClassifier {
	return &InterfaceClassifier{}
}

// IsPublic reports whether name matches a physical NIC naming scheme
func (c *InterfaceClassifier) IsPublic(name string) bool {
	for _, p := range publicNamePatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// Classify returns the interface kind for a name
func (c *InterfaceClassifier) Classify(name string) entities.InterfaceKind {
	if c.IsPublic(name) {
		return entities.KindPublic
	}
	return entities.KindVirtual
}

// ValidateName rejects names the kernel would never produce. Names end up in file
// paths and command arguments, so path separators and whitespace are refused.
func (c *InterfaceClassifier) ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name is empty")
	}
	if len(name) > maxInterfaceNameLength {
		return fmt.Errorf("interface name %q exceeds %d characters", name, maxInterfaceNameLength)
	}
	if name == "." || name == ".." || !interfaceNamePattern.MatchString(name) {
		return fmt.Errorf("interface name %q contains invalid characters", name)
	}
	return nil
}
