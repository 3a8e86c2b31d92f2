package interfaces

import (
	"context"
	"os"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
)

// CommandExecutor runs external system commands
type CommandExecutor interface {
	// Execute runs a command and returns its stdout
	Execute(ctx context.Context, command string, args ...string) ([]byte, error)

	// ExecuteWithTimeout runs a command bounded by timeout
	ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error)
}

// FileSystem abstracts file system access
type FileSystem interface {
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data, creating parent directories, and enforces perm on existing files
	WriteFile(path string, data []byte, perm os.FileMode) error

	Exists(path string) bool

	MkdirAll(path string, perm os.FileMode) error

	Remove(path string) error

	// ListFiles returns the names of regular files in a directory
	ListFiles(path string) ([]string, error)

	Stat(path string) (os.FileInfo, error)
}

// Clock abstracts time
type Clock interface {
	Now() time.Time
}

// EnvironmentDetector classifies the process environment as container or host
type EnvironmentDetector interface {
	DetectEnvironment() entities.ContainerEnvironment

	// AvailableTools reports which network tools are on PATH
	AvailableTools() map[string]bool
}
