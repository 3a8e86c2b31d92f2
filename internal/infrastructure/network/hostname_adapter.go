package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const loopbackHostAddress = "127.0.1.1"

// HostnameAdapter reads and writes the system hostname
type HostnameAdapter struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	paths           Paths
	logger          *logrus.Logger
}

// NewHostnameAdapter creates a new HostnameAdapter
func NewHostnameAdapter(executor interfaces.CommandExecutor, fs interfaces.FileSystem, paths Paths, logger *logrus.Logger) *HostnameAdapter {
	return &HostnameAdapter{
		commandExecutor: executor,
		fileSystem:      fs,
		paths:           paths,
		logger:          logger,
	}
}

// Current returns the hostname from hostnamectl, then hostname, then the hostname file
func (a *HostnameAdapter) Current(ctx context.Context) (string, error) {
	if out, err := a.commandExecutor.Execute(ctx, "hostnamectl", "hostname"); err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			return name, nil
		}
	}
	if out, err := a.commandExecutor.Execute(ctx, "hostname"); err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			return name, nil
		}
	}

	content, err := a.fileSystem.ReadFile(a.paths.HostnameFile)
	if err != nil {
		return "", fileError("cannot determine hostname", err)
	}
	return strings.TrimSpace(string(content)), nil
}

// Set changes the hostname. useService selects hostnamectl over the plain hostname command.
// Returns the actions performed and non-fatal warnings.
func (a *HostnameAdapter) Set(ctx context.Context, hostname string, useService bool) ([]string, []string, error) {
	var actions, warnings []string

	applied := false
	if useService {
		if _, err := a.commandExecutor.Execute(ctx, "hostnamectl", "set-hostname", hostname); err == nil {
			actions = append(actions, "hostnamectl set-hostname "+hostname)
			applied = true
		} else {
			a.logger.WithError(err).Warn("hostnamectl set-hostname failed, falling back to hostname")
		}
	}
	if !applied {
		if _, err := a.commandExecutor.Execute(ctx, "hostname", hostname); err == nil {
			actions = append(actions, "hostname "+hostname)
		} else {
			warnings = append(warnings, fmt.Sprintf("running hostname not changed: %v", err))
		}
	}

	if err := a.fileSystem.WriteFile(a.paths.HostnameFile, []byte(hostname+"\n"), constants.HostFilePermission); err != nil {
		return actions, warnings, fileError(fmt.Sprintf("failed to write %s", a.paths.HostnameFile), err)
	}
	actions = append(actions, "updated "+a.paths.HostnameFile)

	if err := a.updateHosts(hostname); err != nil {
		a.logger.WithError(err).Warn("Failed to update hosts file")
		warnings = append(warnings, fmt.Sprintf("%s not updated: %v", a.paths.HostsFile, err))
	} else {
		actions = append(actions, "updated "+a.paths.HostsFile)
	}

	return actions, warnings, nil
}

// updateHosts rewrites the 127.0.1.1 line, inserting it after 127.0.0.1 when missing
func (a *HostnameAdapter) updateHosts(hostname string) error {
	entry := loopbackHostAddress + "\t" + hostname

	var lines []string
	if content, err := a.fileSystem.ReadFile(a.paths.HostsFile); err == nil {
		lines = splitLines(content)
	}

	replaced := false
	insertAt := -1
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case loopbackHostAddress:
			lines[i] = entry
			replaced = true
		case "127.0.0.1":
			if insertAt < 0 {
				insertAt = i + 1
			}
		}
	}

	if !replaced {
		if insertAt < 0 {
			lines = append(lines, entry)
		} else {
			lines = append(lines[:insertAt], append([]string{entry}, lines[insertAt:]...)...)
		}
	}

	return a.fileSystem.WriteFile(a.paths.HostsFile, joinLines(lines), constants.HostFilePermission)
}

// ResolvConfReader reads nameservers from the resolver configuration
type ResolvConfReader struct {
	fileSystem interfaces.FileSystem
	path       string
}

// NewResolvConfReader creates a new ResolvConfReader
func NewResolvConfReader(fs interfaces.FileSystem, paths Paths) *ResolvConfReader {
	return &ResolvConfReader{fileSystem: fs, path: paths.ResolvConf}
}

// Nameservers returns the nameserver entries in file order
func (r *ResolvConfReader) Nameservers() ([]string, error) {
	content, err := r.fileSystem.ReadFile(r.path)
	if err != nil {
		return nil, fileError(fmt.Sprintf("failed to read %s", r.path), err)
	}

	servers := []string{}
	for _, line := range splitLines(content) {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "nameserver" {
			servers = append(servers, fields[1])
		}
	}
	return servers, nil
}
