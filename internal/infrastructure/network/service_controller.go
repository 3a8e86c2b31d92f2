package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// BackendServiceController runs backend tools for the service-level half of interface actions
type BackendServiceController struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	logger          *logrus.Logger
}

// NewBackendServiceController creates a new BackendServiceController
func NewBackendServiceController(executor interfaces.CommandExecutor, fs interfaces.FileSystem, logger *logrus.Logger) *BackendServiceController {
	return &BackendServiceController{
		commandExecutor: executor,
		fileSystem:      fs,
		logger:          logger,
	}
}

// run executes one command and records it as an action
func (c *BackendServiceController) run(ctx context.Context, actions *[]string, command string, args ...string) error {
	line := strings.TrimSpace(command + " " + strings.Join(args, " "))
	if _, err := c.commandExecutor.Execute(ctx, command, args...); err != nil {
		return err
	}
	*actions = append(*actions, line)
	return nil
}

// runIgnoring executes a best-effort command whose failure is only logged
func (c *BackendServiceController) runIgnoring(ctx context.Context, actions *[]string, command string, args ...string) {
	if err := c.run(ctx, actions, command, args...); err != nil {
		c.logger.WithError(err).WithField("command", command).Debug("Best-effort command failed")
	}
}

// Restart re-applies the persisted configuration of one interface
func (c *BackendServiceController) Restart(ctx context.Context, backend entities.BackendKind, name string) ([]string, error) {
	var actions []string
	var err error

	switch backend {
	case entities.BackendNetplan:
		err = c.run(ctx, &actions, "netplan", "apply")
	case entities.BackendInterfaces:
		c.runIgnoring(ctx, &actions, "ifdown", name)
		err = c.run(ctx, &actions, "ifup", name)
	case entities.BackendNetworkManager:
		connection := NMConnectionName(name)
		c.runIgnoring(ctx, &actions, "nmcli", "connection", "down", connection)
		err = c.run(ctx, &actions, "nmcli", "connection", "up", connection)
	}

	return actions, err
}

// Enable activates the persisted configuration of one interface
func (c *BackendServiceController) Enable(ctx context.Context, backend entities.BackendKind, name string) ([]string, error) {
	var actions []string
	var err error

	switch backend {
	case entities.BackendNetplan:
		err = c.run(ctx, &actions, "netplan", "apply")
	case entities.BackendInterfaces:
		err = c.run(ctx, &actions, "ifup", name)
	case entities.BackendNetworkManager:
		err = c.run(ctx, &actions, "nmcli", "connection", "up", NMConnectionName(name))
	}

	return actions, err
}

// Disable deactivates one interface at the backend level.
// Netplan has no per-interface down; the link action alone applies.
func (c *BackendServiceController) Disable(ctx context.Context, backend entities.BackendKind, name string) ([]string, error) {
	var actions []string
	var err error

	switch backend {
	case entities.BackendInterfaces:
		err = c.run(ctx, &actions, "ifdown", name)
	case entities.BackendNetworkManager:
		err = c.run(ctx, &actions, "nmcli", "device", "disconnect", name)
	}

	return actions, err
}

// ApplyAll reloads the whole backend. Without a service manager only offline steps run.
func (c *BackendServiceController) ApplyAll(ctx context.Context, backend entities.BackendKind, serviceAllowed bool) ([]string, error) {
	var actions []string

	switch backend {
	case entities.BackendNetplan:
		if serviceAllowed {
			return actions, c.run(ctx, &actions, "netplan", "apply")
		}
		return actions, c.run(ctx, &actions, "netplan", "generate")

	case entities.BackendInterfaces:
		if !serviceAllowed {
			return actions, nil
		}
		err := c.run(ctx, &actions, "systemctl", "restart", "networking")
		if err == nil {
			return actions, nil
		}
		if !c.fileSystem.Exists(constants.NetworkingInitScript) {
			return actions, err
		}
		c.logger.WithError(err).Warn("systemctl restart networking failed, trying init script")
		return actions, c.run(ctx, &actions, constants.NetworkingInitScript, "restart")

	case entities.BackendNetworkManager:
		if serviceAllowed {
			return actions, c.run(ctx, &actions, "systemctl", "restart", "NetworkManager")
		}
		return actions, c.run(ctx, &actions, "nmcli", "connection", "reload")

	default:
		return nil, errors.NewBackendUnavailableError(fmt.Sprintf("cannot apply configuration: backend is %s", backend), nil)
	}
}
