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

// NetplanAdapter is the ArtifactStore for netplan YAML files
type NetplanAdapter struct {
	fileSystem interfaces.FileSystem
	logger     *logrus.Logger
	paths      Paths
}

// NewNetplanAdapter creates a new NetplanAdapter
func NewNetplanAdapter(
	fs interfaces.FileSystem,
	logger *logrus.Logger,
	paths Paths,
) *NetplanAdapter {
	return &NetplanAdapter{
		fileSystem: fs,
		logger:     logger,
		paths:      paths,
	}
}

// Backend returns the backend served by this store
func (a *NetplanAdapter) Backend() entities.BackendKind {
	return entities.BackendNetplan
}

// generatedNetplanInterface extracts the interface from a generated file name
func generatedNetplanInterface(file string) (string, bool) {
	prefix := fmt.Sprintf("%s-%s-", constants.NetplanFilePriority, constants.ArtifactPrefix)
	if !strings.HasPrefix(file, prefix) || !strings.HasSuffix(file, ".yaml") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(file, prefix), ".yaml")
	return name, name != ""
}

// List returns every YAML file in the netplan directory
func (a *NetplanAdapter) List(ctx context.Context) ([]entities.GeneratedConfigArtifact, error) {
	if !a.fileSystem.Exists(a.paths.NetplanDir) {
		return nil, nil
	}
	files, err := a.fileSystem.ListFiles(a.paths.NetplanDir)
	if err != nil {
		return nil, fileError(fmt.Sprintf("failed to list %s", a.paths.NetplanDir), err)
	}
	sort.Strings(files)

	var artifacts []entities.GeneratedConfigArtifact
	for _, file := range files {
		if !strings.HasSuffix(file, ".yaml") && !strings.HasSuffix(file, ".yml") {
			continue
		}
		artifact, err := a.load(filepath.Join(a.paths.NetplanDir, file))
		if err != nil {
			a.logger.WithError(err).WithField("path", file).Warn("Failed to read netplan file")
			continue
		}
		artifacts = append(artifacts, *artifact)
	}

	return artifacts, nil
}

// load reads one netplan file. Parse failures are reported on the artifact.
func (a *NetplanAdapter) load(path string) (*entities.GeneratedConfigArtifact, error) {
	content, err := a.fileSystem.ReadFile(path)
	if err != nil {
		return nil, fileError(fmt.Sprintf("failed to read %s", path), err)
	}

	artifact := &entities.GeneratedConfigArtifact{
		Backend:  entities.BackendNetplan,
		Path:     path,
		Rendered: content,
		Size:     int64(len(content)),
	}
	if info, err := a.fileSystem.Stat(path); err == nil {
		artifact.Mode = info.Mode()
		artifact.ModTime = info.ModTime()
		artifact.Size = info.Size()
	}

	generatedName, namedLikeOurs := generatedNetplanInterface(filepath.Base(path))
	artifact.SystemGenerated = namedLikeOurs && hasGeneratedMarker(content)

	doc, err := parseNetplan(content)
	if err != nil {
		artifact.ParseError = err.Error()
		if artifact.SystemGenerated {
			artifact.Interface = generatedName
			artifact.Interfaces = []string{generatedName}
		}
		return artifact, nil
	}

	artifact.Interfaces = doc.interfaceNames()
	if len(artifact.Interfaces) == 1 {
		artifact.Interface = artifact.Interfaces[0]
		dev, _ := doc.device(artifact.Interface)
		artifact.Content = netplanEthernetFrom(artifact.Interface, dev)
	}
	if artifact.SystemGenerated {
		artifact.Interface = generatedName
	}

	return artifact, nil
}

// Find returns the generated file for name, or nil
func (a *NetplanAdapter) Find(ctx context.Context, name string) (*entities.GeneratedConfigArtifact, error) {
	path := a.paths.NetplanFile(name)
	if !a.fileSystem.Exists(path) {
		return nil, nil
	}
	artifact, err := a.load(path)
	if err != nil {
		return nil, err
	}
	if !artifact.SystemGenerated {
		// a user file squatting on the generated name is never adopted
		return nil, nil
	}
	return artifact, nil
}

// Write stores the rendered artifact with owner-only permissions
func (a *NetplanAdapter) Write(ctx context.Context, artifact *entities.GeneratedConfigArtifact) error {
	if err := a.fileSystem.WriteFile(artifact.Path, artifact.Rendered, constants.NetplanFilePermission); err != nil {
		return fileError(fmt.Sprintf("failed to write %s", artifact.Path), err)
	}

	a.logger.WithFields(logrus.Fields{
		"interface":   artifact.Interface,
		"config_path": artifact.Path,
	}).Info("Netplan config file written")
	return nil
}

// Remove deletes a generated netplan file
func (a *NetplanAdapter) Remove(ctx context.Context, artifact entities.GeneratedConfigArtifact) error {
	if !artifact.SystemGenerated {
		return errors.NewPersistenceError(fmt.Sprintf("refusing to remove user-authored file %s", artifact.Path), nil)
	}

	// re-check the marker on disk right before deleting
	current, err := a.load(artifact.Path)
	if err != nil {
		if !a.fileSystem.Exists(artifact.Path) {
			return nil
		}
		return err
	}
	if !current.SystemGenerated {
		return errors.NewPersistenceError(fmt.Sprintf("refusing to remove %s: generated marker missing", artifact.Path), nil)
	}

	if err := a.fileSystem.Remove(artifact.Path); err != nil {
		return fileError(fmt.Sprintf("failed to remove %s", artifact.Path), err)
	}

	a.logger.WithFields(logrus.Fields{
		"interface":   artifact.Interface,
		"config_path": artifact.Path,
	}).Info("Netplan config file removed")
	return nil
}

// ModeOf returns the persisted mode of name; the generated file wins over user files
func (a *NetplanAdapter) ModeOf(ctx context.Context, name string) entities.AddressMode {
	artifacts, err := a.List(ctx)
	if err != nil {
		return entities.ModeUnknown
	}

	mode := entities.ModeUnknown
	for _, artifact := range artifacts {
		if artifact.ParseError != "" || !artifact.Defines(name) {
			continue
		}
		doc, err := parseNetplan(artifact.Rendered)
		if err != nil {
			continue
		}
		m := doc.modeOf(name)
		if artifact.SystemGenerated && m != entities.ModeUnknown {
			return m
		}
		if mode == entities.ModeUnknown {
			mode = m
		}
	}
	return mode
}
