package network

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os/exec"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// NetlinkLiveApplier changes the running kernel state of one interface
type NetlinkLiveApplier struct {
	netlinker       Netlinker
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	resolvConf      string
	logger          *logrus.Logger
}

// NewNetlinkLiveApplier creates a new NetlinkLiveApplier
func NewNetlinkLiveApplier(nl Netlinker, executor interfaces.CommandExecutor, fs interfaces.FileSystem, resolvConf string, logger *logrus.Logger) *NetlinkLiveApplier {
	return &NetlinkLiveApplier{
		netlinker:       nl,
		commandExecutor: executor,
		fileSystem:      fs,
		resolvConf:      resolvConf,
		logger:          logger,
	}
}

// Apply brings the link up and replaces its IPv4 configuration.
// Resolver failures are returned as warnings.
func (a *NetlinkLiveApplier) Apply(ctx context.Context, name string, cfg entities.InterfaceConfig) ([]string, error) {
	logger := a.logger.WithField("interface", name)

	link, err := a.netlinker.LinkByName(name)
	if err != nil {
		return nil, netlinkError(fmt.Sprintf("failed to look up %s", name), err)
	}

	if err := a.netlinker.LinkSetUp(link); err != nil {
		return nil, netlinkError(fmt.Sprintf("failed to bring %s up", name), err)
	}

	if err := a.flushIPv4(link); err != nil {
		return nil, err
	}

	var warnings []string
	if cfg.DHCP {
		w, err := a.startDHCP(ctx, name)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, w...)
	} else {
		if err := a.applyStatic(link, cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.DNSServers) > 0 {
		if err := a.writeNameservers(cfg.DNSServers); err != nil {
			logger.WithError(err).Warn("Failed to update resolver configuration")
			warnings = append(warnings, fmt.Sprintf("DNS servers not applied: %v", err))
		}
	}

	logger.WithField("mode", cfg.Mode()).Info("Live configuration applied")
	return warnings, nil
}

func (a *NetlinkLiveApplier) flushIPv4(link netlink.Link) error {
	name := link.Attrs().Name
	addrs, err := a.netlinker.AddrList(link, familyV4)
	if err != nil {
		return netlinkError(fmt.Sprintf("failed to list addresses of %s", name), err)
	}
	for i := range addrs {
		if err := a.netlinker.AddrDel(link, &addrs[i]); err != nil {
			return netlinkError(fmt.Sprintf("failed to remove %s from %s", addrs[i].IPNet, name), err)
		}
	}
	return nil
}

func (a *NetlinkLiveApplier) applyStatic(link netlink.Link, cfg entities.InterfaceConfig) error {
	name := link.Attrs().Name

	cidr, err := cfg.CIDR()
	if err != nil {
		return errors.NewValidationError("invalid static address", err)
	}
	addr, err := netlink.ParseAddr(cidr)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("invalid address %s", cidr), err)
	}
	if err := a.netlinker.AddrAdd(link, addr); err != nil {
		return netlinkError(fmt.Sprintf("failed to add %s to %s", cidr, name), err)
	}

	if cfg.Gateway == "" {
		return nil
	}
	gw := net.ParseIP(cfg.Gateway)
	if gw == nil {
		return errors.NewValidationError(fmt.Sprintf("invalid gateway %s", cfg.Gateway), nil)
	}
	route := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Gw:        gw,
	}
	if err := a.netlinker.RouteReplace(route); err != nil {
		return netlinkError(fmt.Sprintf("failed to set default route via %s on %s", cfg.Gateway, name), err)
	}
	return nil
}

// startDHCP restarts the DHCP client. A missing client binary is reported as a warning.
func (a *NetlinkLiveApplier) startDHCP(ctx context.Context, name string) ([]string, error) {
	// stop any client already bound to the interface
	_, _ = a.commandExecutor.Execute(ctx, "dhclient", "-x", name)

	if _, err := a.commandExecutor.Execute(ctx, "dhclient", name); err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			a.logger.WithField("interface", name).Warn("dhclient not available, DHCP lease not requested")
			return []string{"dhclient not available; DHCP lease not requested"}, nil
		}
		return nil, err
	}
	return nil, nil
}

// writeNameservers replaces the nameserver lines of the resolver configuration
func (a *NetlinkLiveApplier) writeNameservers(servers []string) error {
	var kept []string
	if content, err := a.fileSystem.ReadFile(a.resolvConf); err == nil {
		for _, line := range strings.Split(string(content), "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "nameserver") {
				continue
			}
			kept = append(kept, strings.TrimRight(line, " \t"))
		}
	}
	for _, server := range servers {
		kept = append(kept, "nameserver "+server)
	}

	content := strings.Join(kept, "\n") + "\n"
	if err := a.fileSystem.WriteFile(a.resolvConf, []byte(content), constants.HostFilePermission); err != nil {
		return fmt.Errorf("write %s: %w", a.resolvConf, err)
	}
	return nil
}
