package network

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// NetworkManagerAdapter is the ArtifactStore for NetworkManager keyfiles
type NetworkManagerAdapter struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	logger          *logrus.Logger
	paths           Paths
}

// NewNetworkManagerAdapter creates a new NetworkManagerAdapter
func NewNetworkManagerAdapter(
	executor interfaces.CommandExecutor,
	fs interfaces.FileSystem,
	logger *logrus.Logger,
	paths Paths,
) *NetworkManagerAdapter {
	return &NetworkManagerAdapter{
		commandExecutor: executor,
		fileSystem:      fs,
		logger:          logger,
		paths:           paths,
	}
}

// Backend returns the backend served by this store
func (a *NetworkManagerAdapter) Backend() entities.BackendKind {
	return entities.BackendNetworkManager
}

func generatedKeyfileInterface(file string) (string, bool) {
	prefix := constants.ArtifactPrefix + "-"
	if !strings.HasPrefix(file, prefix) || !strings.HasSuffix(file, ".nmconnection") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(file, prefix), ".nmconnection")
	return name, name != ""
}

// List returns every keyfile in the connections directory
func (a *NetworkManagerAdapter) List(ctx context.Context) ([]entities.GeneratedConfigArtifact, error) {
	if !a.fileSystem.Exists(a.paths.NMConnectionsDir) {
		return nil, nil
	}
	files, err := a.fileSystem.ListFiles(a.paths.NMConnectionsDir)
	if err != nil {
		return nil, fileError(fmt.Sprintf("failed to list %s", a.paths.NMConnectionsDir), err)
	}
	sort.Strings(files)

	var artifacts []entities.GeneratedConfigArtifact
	for _, file := range files {
		if !strings.HasSuffix(file, ".nmconnection") {
			continue
		}
		artifact, err := a.load(filepath.Join(a.paths.NMConnectionsDir, file))
		if err != nil {
			a.logger.WithError(err).WithField("path", file).Warn("Failed to read keyfile")
			continue
		}
		artifacts = append(artifacts, *artifact)
	}
	return artifacts, nil
}

func (a *NetworkManagerAdapter) load(path string) (*entities.GeneratedConfigArtifact, error) {
	content, err := a.fileSystem.ReadFile(path)
	if err != nil {
		return nil, fileError(fmt.Sprintf("failed to read %s", path), err)
	}

	artifact := &entities.GeneratedConfigArtifact{
		Backend:  entities.BackendNetworkManager,
		Path:     path,
		Rendered: content,
		Size:     int64(len(content)),
	}
	if info, err := a.fileSystem.Stat(path); err == nil {
		artifact.Mode = info.Mode()
		artifact.ModTime = info.ModTime()
		artifact.Size = info.Size()
	}

	generatedName, namedLikeOurs := generatedKeyfileInterface(filepath.Base(path))
	artifact.SystemGenerated = namedLikeOurs && hasGeneratedMarker(content)

	k, err := parseKeyfile(content)
	if err != nil {
		artifact.ParseError = err.Error()
	} else {
		conn := nmConnectionFrom(k)
		artifact.Content = conn
		if conn.Interface != "" {
			artifact.Interface = conn.Interface
			artifact.Interfaces = []string{conn.Interface}
		}
	}
	if artifact.SystemGenerated {
		artifact.Interface = generatedName
		artifact.Interfaces = []string{generatedName}
	}
	return artifact, nil
}

// Find returns the generated keyfile for name, or nil
func (a *NetworkManagerAdapter) Find(ctx context.Context, name string) (*entities.GeneratedConfigArtifact, error) {
	path := a.paths.NMKeyfile(name)
	if !a.fileSystem.Exists(path) {
		return nil, nil
	}
	artifact, err := a.load(path)
	if err != nil {
		return nil, err
	}
	if !artifact.SystemGenerated {
		return nil, nil
	}
	return artifact, nil
}

// Write stores the keyfile and asks NetworkManager to load it
func (a *NetworkManagerAdapter) Write(ctx context.Context, artifact *entities.GeneratedConfigArtifact) error {
	if err := a.fileSystem.WriteFile(artifact.Path, artifact.Rendered, constants.NetplanFilePermission); err != nil {
		return fileError(fmt.Sprintf("failed to write %s", artifact.Path), err)
	}

	logger := a.logger.WithFields(logrus.Fields{
		"interface":   artifact.Interface,
		"config_path": artifact.Path,
	})

	// the keyfile is durable even when the daemon cannot be reached
	if _, err := a.commandExecutor.Execute(ctx, "nmcli", "connection", "load", artifact.Path); err != nil {
		logger.WithError(err).Warn("nmcli connection load failed, profile will be read on next daemon start")
	}

	logger.Info("NetworkManager keyfile written")
	return nil
}

// Remove deletes the generated connection profile
func (a *NetworkManagerAdapter) Remove(ctx context.Context, artifact entities.GeneratedConfigArtifact) error {
	if !artifact.SystemGenerated {
		return errors.NewPersistenceError(fmt.Sprintf("refusing to remove user-authored connection %s", artifact.Path), nil)
	}

	connection := NMConnectionName(artifact.Interface)
	logger := a.logger.WithFields(logrus.Fields{
		"interface":  artifact.Interface,
		"connection": connection,
	})

	if _, err := a.commandExecutor.Execute(ctx, "nmcli", "connection", "delete", connection); err != nil {
		// not loaded or daemon down; the file is removed below either way
		logger.WithError(err).Debug("nmcli connection delete failed")
	}

	if a.fileSystem.Exists(artifact.Path) {
		if err := a.fileSystem.Remove(artifact.Path); err != nil {
			return fileError(fmt.Sprintf("failed to remove %s", artifact.Path), err)
		}
	}

	logger.Info("NetworkManager connection removed")
	return nil
}

// ModeOf returns the persisted mode of name; the generated profile wins over user profiles
func (a *NetworkManagerAdapter) ModeOf(ctx context.Context, name string) entities.AddressMode {
	artifacts, err := a.List(ctx)
	if err != nil {
		return entities.ModeUnknown
	}

	mode := entities.ModeUnknown
	for _, artifact := range artifacts {
		conn, ok := artifact.Content.(*entities.NMConnection)
		if !ok || !artifact.Defines(name) {
			continue
		}
		m := nmMode(conn.Method)
		if artifact.SystemGenerated && m != entities.ModeUnknown {
			return m
		}
		if mode == entities.ModeUnknown {
			mode = m
		}
	}
	return mode
}
