package network

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"

	"github.com/google/uuid"
)

// keyfile is a parsed NetworkManager keyfile, keyed by section then key
type keyfile struct {
	sections map[string]map[string]string
}

func (k keyfile) get(section, key string) string {
	return k.sections[section][key]
}

// connectionUUID is stable per connection name so identical configs produce identical keyfiles
func connectionUUID(connection string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(constants.ArtifactPrefix+":"+connection)).String()
}

// renderKeyfile produces a NetworkManager keyfile, marker line first
func renderKeyfile(c *entities.NMConnection) []byte {
	var b strings.Builder
	b.WriteString(constants.GeneratedMarker + "\n")
	b.WriteString("[connection]\n")
	fmt.Fprintf(&b, "id=%s\n", c.ConnectionName)
	fmt.Fprintf(&b, "uuid=%s\n", connectionUUID(c.ConnectionName))
	b.WriteString("type=ethernet\n")
	fmt.Fprintf(&b, "interface-name=%s\n", c.Interface)
	b.WriteString("autoconnect=true\n")
	b.WriteString("autoconnect-priority=100\n\n")

	b.WriteString("[ipv4]\n")
	fmt.Fprintf(&b, "method=%s\n", c.Method)
	for i, addr := range c.Addresses {
		fmt.Fprintf(&b, "address%d=%s\n", i+1, addr)
	}
	if c.Gateway != "" {
		fmt.Fprintf(&b, "gateway=%s\n", c.Gateway)
	}
	if len(c.DNS) > 0 {
		fmt.Fprintf(&b, "dns=%s;\n", strings.Join(c.DNS, ";"))
		if c.Method == entities.NMMethodAuto {
			b.WriteString("ignore-auto-dns=true\n")
		}
	}
	b.WriteString("\n[ipv6]\nmethod=ignore\n")
	return []byte(b.String())
}

// parseKeyfile reads the INI-style keyfile format
func parseKeyfile(content []byte) (keyfile, error) {
	k := keyfile{sections: map[string]map[string]string{}}
	current := ""

	scanner := bufio.NewScanner(bytes.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return k, fmt.Errorf("line %d: malformed section header", lineNo)
			}
			current = strings.TrimSpace(line[1 : len(line)-1])
			if k.sections[current] == nil {
				k.sections[current] = map[string]string{}
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return k, fmt.Errorf("line %d: expected key=value", lineNo)
		}
		if current == "" {
			return k, fmt.Errorf("line %d: key outside of a section", lineNo)
		}
		k.sections[current][strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return k, err
	}
	return k, nil
}

// nmConnectionFrom maps a parsed keyfile to its variant
func nmConnectionFrom(k keyfile) *entities.NMConnection {
	c := &entities.NMConnection{
		ConnectionName: k.get("connection", "id"),
		Interface:      k.get("connection", "interface-name"),
		Method:         k.get("ipv4", "method"),
		Gateway:        k.get("ipv4", "gateway"),
	}

	// addressN keys, optionally "cidr,gateway"
	var indexes []int
	for key := range k.sections["ipv4"] {
		if n, err := strconv.Atoi(strings.TrimPrefix(key, "address")); err == nil && strings.HasPrefix(key, "address") {
			indexes = append(indexes, n)
		}
	}
	sort.Ints(indexes)
	for _, n := range indexes {
		value := k.get("ipv4", fmt.Sprintf("address%d", n))
		addr, gw, hasGW := strings.Cut(value, ",")
		c.Addresses = append(c.Addresses, strings.TrimSpace(addr))
		if hasGW && c.Gateway == "" {
			c.Gateway = strings.TrimSpace(gw)
		}
	}

	for _, dns := range strings.Split(k.get("ipv4", "dns"), ";") {
		if dns = strings.TrimSpace(dns); dns != "" {
			c.DNS = append(c.DNS, dns)
		}
	}
	return c
}

// decodeNMArtifact parses keyfile content into its variant
func decodeNMArtifact(content []byte) (*entities.NMConnection, error) {
	k, err := parseKeyfile(content)
	if err != nil {
		return nil, errors.NewSyntaxError("invalid NetworkManager keyfile", err)
	}
	if _, ok := k.sections["connection"]; !ok {
		return nil, errors.NewSyntaxError("missing [connection] section", nil)
	}
	if _, ok := k.sections["ipv4"]; !ok {
		return nil, errors.NewSyntaxError("missing [ipv4] section", nil)
	}
	return nmConnectionFrom(k), nil
}

func nmMode(method string) entities.AddressMode {
	switch method {
	case entities.NMMethodAuto:
		return entities.ModeDHCP
	case entities.NMMethodManual:
		return entities.ModeStatic
	default:
		return entities.ModeUnknown
	}
}
