package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/services"

	"github.com/sirupsen/logrus"
)

// ArtifactsUseCase lists and validates the persisted artifacts of the active backend
type ArtifactsUseCase struct {
	host       *HostContext
	classifier *services.InterfaceClassifier
	stores     interfaces.ArtifactStoreProvider
	validator  interfaces.ArtifactValidator
	logger     *logrus.Logger
}

// NewArtifactsUseCase creates a new ArtifactsUseCase
func NewArtifactsUseCase(
	host *HostContext,
	classifier *services.InterfaceClassifier,
	stores interfaces.ArtifactStoreProvider,
	validator interfaces.ArtifactValidator,
	logger *logrus.Logger,
) *ArtifactsUseCase {
	return &ArtifactsUseCase{
		host:       host,
		classifier: classifier,
		stores:     stores,
		validator:  validator,
		logger:     logger,
	}
}

// ListAll returns every artifact of the active backend, user-authored ones included
func (uc *ArtifactsUseCase) ListAll(ctx context.Context) (entities.BackendKind, []entities.GeneratedConfigArtifact, error) {
	detection, err := uc.host.Detection(ctx)
	if err != nil {
		return entities.BackendNone, nil, err
	}
	if detection.Backend == entities.BackendNone {
		return detection.Backend, []entities.GeneratedConfigArtifact{}, nil
	}

	store, err := uc.stores.StoreFor(detection.Backend)
	if err != nil {
		return detection.Backend, nil, err
	}
	artifacts, err := store.List(ctx)
	if err != nil {
		return detection.Backend, nil, err
	}
	if artifacts == nil {
		artifacts = []entities.GeneratedConfigArtifact{}
	}
	return detection.Backend, artifacts, nil
}

// ListGenerated returns only the artifacts created by this service
func (uc *ArtifactsUseCase) ListGenerated(ctx context.Context) ([]entities.GeneratedConfigArtifact, error) {
	_, all, err := uc.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	generated := make([]entities.GeneratedConfigArtifact, 0, len(all))
	for _, artifact := range all {
		if artifact.SystemGenerated {
			generated = append(generated, artifact)
		}
	}
	sort.Slice(generated, func(i, j int) bool {
		if generated[i].Interface != generated[j].Interface {
			return generated[i].Interface < generated[j].Interface
		}
		return generated[i].Path < generated[j].Path
	})
	return generated, nil
}

// Validate checks the generated artifact of name. Syntax problems are reported
// in the result; a missing artifact is a NotFoundError.
func (uc *ArtifactsUseCase) Validate(ctx context.Context, name string) (*entities.ValidationReport, error) {
	if err := uc.classifier.ValidateName(name); err != nil {
		return nil, errors.NewValidationError("invalid interface name", err)
	}

	detection, err := uc.host.Detection(ctx)
	if err != nil {
		return nil, err
	}
	if detection.Backend == entities.BackendNone {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no generated configuration for %s", name))
	}

	store, err := uc.stores.StoreFor(detection.Backend)
	if err != nil {
		return nil, err
	}
	artifact, err := store.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no generated configuration for %s", name))
	}

	report := uc.report(*artifact)
	return &report, nil
}

// ValidateAll validates every artifact of the active backend
func (uc *ArtifactsUseCase) ValidateAll(ctx context.Context) ([]entities.ValidationReport, error) {
	_, artifacts, err := uc.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]entities.ValidationReport, 0, len(artifacts))
	for _, artifact := range artifacts {
		reports = append(reports, uc.report(artifact))
	}
	return reports, nil
}

func (uc *ArtifactsUseCase) report(artifact entities.GeneratedConfigArtifact) entities.ValidationReport {
	report := entities.ValidationReport{
		Interface:       artifact.Interface,
		Path:            artifact.Path,
		SystemGenerated: artifact.SystemGenerated,
		Permissions:     artifact.Permissions(),
	}

	switch {
	case artifact.ParseError != "":
		report.Error = artifact.ParseError
	case artifact.Content == nil:
		// user-authored files spanning several interfaces only get the parse check
		report.Valid = true
	default:
		report.Kind = artifact.Content.Kind()
		if _, err := uc.validator.ValidateContent(report.Kind, artifact.Rendered); err != nil {
			report.Error = err.Error()
		} else {
			report.Valid = true
		}
	}

	if artifact.Backend == entities.BackendNetplan && artifact.Mode != 0 &&
		artifact.Mode.Perm() != constants.NetplanFilePermission {
		report.PermissionWarning = fmt.Sprintf("netplan file %s has permissions %s, expected 600", artifact.Path, artifact.Permissions())
	}

	if !report.Valid {
		uc.logger.WithFields(logrus.Fields{
			"interface":   artifact.Interface,
			"config_path": artifact.Path,
		}).Warn("Artifact failed validation: " + report.Error)
	}
	return report
}
