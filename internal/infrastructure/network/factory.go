package network

import (
	"context"
	"fmt"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// ArtifactStoreFactory hands out the ArtifactStore of each backend
type ArtifactStoreFactory struct {
	stores map[entities.BackendKind]interfaces.ArtifactStore
}

// NewArtifactStoreFactory creates one store per supported backend
func NewArtifactStoreFactory(
	executor interfaces.CommandExecutor,
	fs interfaces.FileSystem,
	logger *logrus.Logger,
	paths Paths,
) *ArtifactStoreFactory {
	return &ArtifactStoreFactory{
		stores: map[entities.BackendKind]interfaces.ArtifactStore{
			entities.BackendNetplan:        NewNetplanAdapter(fs, logger, paths),
			entities.BackendInterfaces:     NewInterfacesAdapter(fs, logger, paths),
			entities.BackendNetworkManager: NewNetworkManagerAdapter(executor, fs, logger, paths),
		},
	}
}

// StoreFor returns the store of backend, or BackendUnavailableError for none
func (f *ArtifactStoreFactory) StoreFor(backend entities.BackendKind) (interfaces.ArtifactStore, error) {
	store, ok := f.stores[backend]
	if !ok {
		return nil, errors.NewBackendUnavailableError(fmt.Sprintf("no artifact store for backend %q", backend), nil)
	}
	return store, nil
}

// DetectedModeResolver reads the persisted mode from the store of the detected backend
type DetectedModeResolver struct {
	detector interfaces.BackendDetector
	provider interfaces.ArtifactStoreProvider
}

// NewDetectedModeResolver creates a new DetectedModeResolver
func NewDetectedModeResolver(detector interfaces.BackendDetector, provider interfaces.ArtifactStoreProvider) *DetectedModeResolver {
	return &DetectedModeResolver{detector: detector, provider: provider}
}

// ModeOf returns unknown when no backend is active
func (r *DetectedModeResolver) ModeOf(ctx context.Context, name string) entities.AddressMode {
	detection, err := r.detector.Detect(ctx)
	if err != nil {
		return entities.ModeUnknown
	}
	store, err := r.provider.StoreFor(detection.Backend)
	if err != nil {
		return entities.ModeUnknown
	}
	return store.ModeOf(ctx, name)
}
