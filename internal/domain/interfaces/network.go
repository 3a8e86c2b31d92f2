package interfaces

import (
	"context"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
)

// BackendDetector determines the authoritative persistence backend.
// Results are cached until Invalidate is called.
type BackendDetector interface {
	Detect(ctx context.Context) (entities.DetectionResult, error)
	Invalidate()
}

// InterfaceRegistry enumerates kernel interfaces. Results are never cached.
type InterfaceRegistry interface {
	ListAll(ctx context.Context) ([]entities.NetworkInterface, error)
	ListPublic(ctx context.Context) ([]entities.NetworkInterface, error)
	Get(ctx context.Context, name string) (*entities.NetworkInterface, error)
	Routes(ctx context.Context) ([]entities.Route, error)
}

// LiveApplier changes running kernel state for one interface, bypassing any backend
type LiveApplier interface {
	// Apply returns non-fatal warnings alongside a nil error
	Apply(ctx context.Context, name string, cfg entities.InterfaceConfig) ([]string, error)
}

// ArtifactStore reads and writes the persisted artifacts of one backend
type ArtifactStore interface {
	Backend() entities.BackendKind

	// List returns every artifact of the backend, user-authored ones included
	List(ctx context.Context) ([]entities.GeneratedConfigArtifact, error)

	// Find returns the system-generated artifact for name, or nil if there is none
	Find(ctx context.Context, name string) (*entities.GeneratedConfigArtifact, error)

	Write(ctx context.Context, artifact *entities.GeneratedConfigArtifact) error

	// Remove deletes a system-generated artifact; user-authored artifacts are refused
	Remove(ctx context.Context, artifact entities.GeneratedConfigArtifact) error

	// ModeOf reports the address mode persisted for name across all artifacts
	ModeOf(ctx context.Context, name string) entities.AddressMode
}

// ArtifactStoreProvider returns the store for a backend
type ArtifactStoreProvider interface {
	StoreFor(backend entities.BackendKind) (ArtifactStore, error)
}

// ArtifactGenerator builds backend-specific persisted content for one interface
type ArtifactGenerator interface {
	Generate(backend entities.BackendKind, name string, cfg entities.InterfaceConfig, existing *entities.GeneratedConfigArtifact) (*entities.GeneratedConfigArtifact, error)
}

// ArtifactValidator performs structural validation only
type ArtifactValidator interface {
	Validate(content entities.BackendArtifact) error
	ValidateContent(kind entities.ArtifactKind, content []byte) (entities.BackendArtifact, error)
}

// BackupService keeps copies of artifacts before they are overwritten or removed
type BackupService interface {
	CreateBackup(ctx context.Context, interfaceName string, configPath string) error
	ListBackups(ctx context.Context, interfaceName string) ([]string, error)
}

// ServiceController runs the service-level half of interface actions for a backend.
// Every method returns the actions it performed.
type ServiceController interface {
	Restart(ctx context.Context, backend entities.BackendKind, name string) ([]string, error)
	Enable(ctx context.Context, backend entities.BackendKind, name string) ([]string, error)
	Disable(ctx context.Context, backend entities.BackendKind, name string) ([]string, error)

	// ApplyAll reloads the whole backend; without a service manager only offline steps run
	ApplyAll(ctx context.Context, backend entities.BackendKind, serviceAllowed bool) ([]string, error)
}

// HostnameManager reads and writes the system hostname
type HostnameManager interface {
	Current(ctx context.Context) (string, error)
	Set(ctx context.Context, hostname string, useService bool) ([]string, []string, error)
}

// ResolverReader reads the host resolver configuration
type ResolverReader interface {
	Nameservers() ([]string, error)
}
