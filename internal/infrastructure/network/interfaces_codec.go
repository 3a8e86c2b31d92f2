package network

import (
	"fmt"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
)

func beginMarker(name string) string {
	return fmt.Sprintf("# BEGIN %s %s", constants.ArtifactPrefix, name)
}

func endMarker(name string) string {
	return fmt.Sprintf("# END %s %s", constants.ArtifactPrefix, name)
}

// interfacesBlock is a generated stanza block inside the interfaces file; Start and End are line indexes of the markers
type interfacesBlock struct {
	Interface string
	Start     int
	End       int
}

// renderStanza produces the generated block, markers included
func renderStanza(s *entities.InterfacesStanza) []byte {
	var b strings.Builder
	b.WriteString(beginMarker(s.Interface) + "\n")
	fmt.Fprintf(&b, "auto %s\n", s.Interface)
	fmt.Fprintf(&b, "iface %s inet %s\n", s.Interface, s.Method)
	if s.Method == entities.StanzaMethodStatic {
		fmt.Fprintf(&b, "    address %s\n", s.Address)
		fmt.Fprintf(&b, "    netmask %s\n", s.Netmask)
		if s.Gateway != "" {
			fmt.Fprintf(&b, "    gateway %s\n", s.Gateway)
		}
	}
	if len(s.DNSNameservers) > 0 {
		fmt.Fprintf(&b, "    dns-nameservers %s\n", strings.Join(s.DNSNameservers, " "))
	}
	b.WriteString(endMarker(s.Interface) + "\n")
	return []byte(b.String())
}

// decodeStanza parses one stanza; marker and comment lines are ignored
func decodeStanza(content []byte) (*entities.InterfacesStanza, error) {
	var stanza *entities.InterfacesStanza
	auto := map[string]bool{}

	for i, raw := range strings.Split(string(content), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "auto", "allow-hotplug":
			for _, name := range fields[1:] {
				auto[name] = true
			}
		case "iface":
			if stanza != nil {
				return nil, errors.NewSyntaxError(fmt.Sprintf("line %d: more than one iface stanza", i+1), nil)
			}
			if len(fields) != 4 || fields[2] != "inet" {
				return nil, errors.NewSyntaxError(fmt.Sprintf("line %d: expected \"iface <name> inet <method>\"", i+1), nil)
			}
			stanza = &entities.InterfacesStanza{Interface: fields[1], Method: fields[3]}
		default:
			if stanza == nil {
				return nil, errors.NewSyntaxError(fmt.Sprintf("line %d: option %q outside iface stanza", i+1, fields[0]), nil)
			}
			if len(fields) < 2 {
				return nil, errors.NewSyntaxError(fmt.Sprintf("line %d: option %q has no value", i+1, fields[0]), nil)
			}
			switch fields[0] {
			case "address":
				stanza.Address = fields[1]
			case "netmask":
				stanza.Netmask = fields[1]
			case "gateway":
				stanza.Gateway = fields[1]
			case "dns-nameservers":
				stanza.DNSNameservers = append(stanza.DNSNameservers, fields[1:]...)
			}
		}
	}

	if stanza == nil {
		return nil, errors.NewSyntaxError("no iface stanza found", nil)
	}
	if !auto[stanza.Interface] {
		return nil, errors.NewSyntaxError(fmt.Sprintf("missing \"auto %s\"", stanza.Interface), nil)
	}
	return stanza, nil
}

// findBlocks locates every generated block in the interfaces file
func findBlocks(lines []string) ([]interfacesBlock, error) {
	var blocks []interfacesBlock
	beginPrefix := fmt.Sprintf("# BEGIN %s ", constants.ArtifactPrefix)

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, beginPrefix) {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, beginPrefix))
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == endMarker(name) {
				end = j
				break
			}
		}
		if end < 0 {
			return nil, fmt.Errorf("unterminated generated block for %s at line %d", name, i+1)
		}
		blocks = append(blocks, interfacesBlock{Interface: name, Start: i, End: end})
		i = end
	}
	return blocks, nil
}

func splitLines(content []byte) []string {
	text := strings.TrimRight(string(content), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func joinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// rawLines splits content into lines that keep their newline, so joining them restores the exact bytes
func rawLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// replaceBlock swaps the block for name in place, or appends it after one separator line.
// Bytes outside generated blocks are never rewritten.
func replaceBlock(content []byte, name string, block []byte) ([]byte, error) {
	lines := rawLines(content)
	blocks, err := findBlocks(lines)
	if err != nil {
		return nil, err
	}

	for _, b := range blocks {
		if b.Interface == name {
			var out strings.Builder
			out.WriteString(strings.Join(lines[:b.Start], ""))
			out.Write(block)
			out.WriteString(strings.Join(lines[b.End+1:], ""))
			return []byte(out.String()), nil
		}
	}

	out := append([]byte{}, content...)
	if len(out) > 0 {
		if out[len(out)-1] != '\n' {
			out = append(out, '\n')
		}
		out = append(out, '\n')
	}
	return append(out, block...), nil
}

// removeBlock deletes the block for name and the separator line written before it
func removeBlock(content []byte, name string) ([]byte, bool, error) {
	lines := rawLines(content)
	blocks, err := findBlocks(lines)
	if err != nil {
		return nil, false, err
	}

	for _, b := range blocks {
		if b.Interface != name {
			continue
		}
		start := b.Start
		if start > 0 && lines[start-1] == "\n" {
			start--
		}
		out := strings.Join(lines[:start], "") + strings.Join(lines[b.End+1:], "")
		return []byte(out), true, nil
	}
	return content, false, nil
}

// blockContent returns the lines of the block for name, markers included
func blockContent(lines []string, b interfacesBlock) []byte {
	return joinLines(lines[b.Start : b.End+1])
}

// userLines returns the lines outside generated blocks
func userLines(lines []string, blocks []interfacesBlock) []string {
	var out []string
	next := 0
	for _, b := range blocks {
		out = append(out, lines[next:b.Start]...)
		next = b.End + 1
	}
	return append(out, lines[next:]...)
}

// userStanzas maps every user-authored iface name to its method
func userStanzas(lines []string) map[string]string {
	stanzas := map[string]string{}
	for _, raw := range lines {
		fields := strings.Fields(strings.TrimSpace(raw))
		if len(fields) >= 4 && fields[0] == "iface" && fields[2] == "inet" {
			stanzas[fields[1]] = fields[3]
		}
	}
	return stanzas
}

func stanzaMode(method string) entities.AddressMode {
	switch method {
	case entities.StanzaMethodDHCP:
		return entities.ModeDHCP
	case entities.StanzaMethodStatic:
		return entities.ModeStatic
	default:
		return entities.ModeUnknown
	}
}
