package usecases

import (
	"context"
	"fmt"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"
	"github.com/esnrhm/LinuxNetAPI/pkg/utils"

	"github.com/sirupsen/logrus"
)

// HostnameUseCase reads and changes the system hostname
type HostnameUseCase struct {
	host    *HostContext
	manager interfaces.HostnameManager
	logger  *logrus.Logger
}

// NewHostnameUseCase creates a new HostnameUseCase
func NewHostnameUseCase(host *HostContext, manager interfaces.HostnameManager, logger *logrus.Logger) *HostnameUseCase {
	return &HostnameUseCase{host: host, manager: manager, logger: logger}
}

// Get returns the current hostname
func (uc *HostnameUseCase) Get(ctx context.Context) (string, error) {
	return uc.manager.Current(ctx)
}

// Set changes the hostname. The name is trimmed and lowercased first.
func (uc *HostnameUseCase) Set(ctx context.Context, name string) (*entities.HostnameResult, error) {
	name = utils.NormalizeHostname(name)
	if err := utils.ValidateHostname(name); err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid hostname %q", name), err)
	}

	current, err := uc.manager.Current(ctx)
	if err != nil {
		return nil, err
	}
	result := &entities.HostnameResult{OldHostname: current, NewHostname: name}
	if current == name {
		return result, nil
	}

	useService := uc.host.ServiceGate(entities.CapabilityServiceRestart)
	actions, warnings, err := uc.manager.Set(context.WithoutCancel(ctx), name, useService)
	if err != nil {
		return nil, err
	}
	result.Changed = true
	result.Actions = actions
	result.Warnings = warnings

	uc.logger.WithFields(logrus.Fields{
		"old_hostname": current,
		"new_hostname": name,
	}).Info("Hostname changed")
	return result, nil
}
