package network

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// InterfacesAdapter is the ArtifactStore for the ifupdown interfaces file.
// Generated stanzas live in marker-delimited blocks; everything else belongs to the user.
type InterfacesAdapter struct {
	fileSystem interfaces.FileSystem
	logger     *logrus.Logger
	path       string

	// guards read-modify-write of the shared file across interfaces
	mu sync.Mutex
}

// NewInterfacesAdapter creates a new InterfacesAdapter
func NewInterfacesAdapter(
	fs interfaces.FileSystem,
	logger *logrus.Logger,
	paths Paths,
) *InterfacesAdapter {
	return &InterfacesAdapter{
		fileSystem: fs,
		logger:     logger,
		path:       paths.InterfacesFile,
	}
}

// Backend returns the backend served by this store
func (a *InterfacesAdapter) Backend() entities.BackendKind {
	return entities.BackendInterfaces
}

func (a *InterfacesAdapter) read() ([]byte, error) {
	if !a.fileSystem.Exists(a.path) {
		return nil, nil
	}
	content, err := a.fileSystem.ReadFile(a.path)
	if err != nil {
		return nil, fileError(fmt.Sprintf("failed to read %s", a.path), err)
	}
	return content, nil
}

func (a *InterfacesAdapter) fileMode() os.FileMode {
	if info, err := a.fileSystem.Stat(a.path); err == nil {
		return info.Mode().Perm()
	}
	return constants.InterfacesFilePermission
}

// List returns one artifact per generated block plus one for the user-authored remainder
func (a *InterfacesAdapter) List(ctx context.Context) ([]entities.GeneratedConfigArtifact, error) {
	content, err := a.read()
	if err != nil || content == nil {
		return nil, err
	}

	base := entities.GeneratedConfigArtifact{Backend: entities.BackendInterfaces, Path: a.path}
	if info, err := a.fileSystem.Stat(a.path); err == nil {
		base.Mode = info.Mode()
		base.ModTime = info.ModTime()
	}

	lines := splitLines(content)
	blocks, err := findBlocks(lines)
	if err != nil {
		broken := base
		broken.Rendered = content
		broken.Size = int64(len(content))
		broken.ParseError = err.Error()
		return []entities.GeneratedConfigArtifact{broken}, nil
	}

	var artifacts []entities.GeneratedConfigArtifact
	for _, b := range blocks {
		artifacts = append(artifacts, a.blockArtifact(base, lines, b))
	}

	remainder := userLines(lines, blocks)
	if strings.TrimSpace(strings.Join(remainder, "")) != "" {
		user := base
		user.Rendered = joinLines(remainder)
		user.Size = int64(len(user.Rendered))
		for name := range userStanzas(remainder) {
			user.Interfaces = append(user.Interfaces, name)
		}
		sort.Strings(user.Interfaces)
		artifacts = append(artifacts, user)
	}

	return artifacts, nil
}

func (a *InterfacesAdapter) blockArtifact(base entities.GeneratedConfigArtifact, lines []string, b interfacesBlock) entities.GeneratedConfigArtifact {
	artifact := base
	artifact.Interface = b.Interface
	artifact.Interfaces = []string{b.Interface}
	artifact.SystemGenerated = true
	artifact.Rendered = blockContent(lines, b)
	artifact.Size = int64(len(artifact.Rendered))

	stanza, err := decodeStanza(artifact.Rendered)
	if err != nil {
		artifact.ParseError = err.Error()
	} else {
		artifact.Content = stanza
	}
	return artifact
}

// Find returns the generated block for name, or nil
func (a *InterfacesAdapter) Find(ctx context.Context, name string) (*entities.GeneratedConfigArtifact, error) {
	artifacts, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range artifacts {
		if artifacts[i].SystemGenerated && artifacts[i].Interface == name {
			return &artifacts[i], nil
		}
	}
	return nil, nil
}

// Write replaces the block for the artifact's interface, or appends it
func (a *InterfacesAdapter) Write(ctx context.Context, artifact *entities.GeneratedConfigArtifact) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	content, err := a.read()
	if err != nil {
		return err
	}

	updated, err := replaceBlock(content, artifact.Interface, artifact.Rendered)
	if err != nil {
		return errors.NewPersistenceError(fmt.Sprintf("cannot update %s", a.path), err)
	}

	if err := a.fileSystem.WriteFile(a.path, updated, a.fileMode()); err != nil {
		return fileError(fmt.Sprintf("failed to write %s", a.path), err)
	}

	a.logger.WithFields(logrus.Fields{
		"interface":   artifact.Interface,
		"config_path": a.path,
	}).Info("Interfaces stanza written")
	return nil
}

// Remove deletes the generated block, leaving every other line untouched
func (a *InterfacesAdapter) Remove(ctx context.Context, artifact entities.GeneratedConfigArtifact) error {
	if !artifact.SystemGenerated {
		return errors.NewPersistenceError(fmt.Sprintf("refusing to remove user-authored stanzas in %s", a.path), nil)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	content, err := a.read()
	if err != nil {
		return err
	}

	updated, removed, err := removeBlock(content, artifact.Interface)
	if err != nil {
		return errors.NewPersistenceError(fmt.Sprintf("cannot update %s", a.path), err)
	}
	if !removed {
		return nil
	}

	if err := a.fileSystem.WriteFile(a.path, updated, a.fileMode()); err != nil {
		return fileError(fmt.Sprintf("failed to write %s", a.path), err)
	}

	a.logger.WithFields(logrus.Fields{
		"interface":   artifact.Interface,
		"config_path": a.path,
	}).Info("Interfaces stanza removed")
	return nil
}

// ModeOf returns the persisted mode of name; the generated block wins over user stanzas
func (a *InterfacesAdapter) ModeOf(ctx context.Context, name string) entities.AddressMode {
	content, err := a.read()
	if err != nil || content == nil {
		return entities.ModeUnknown
	}
	lines := splitLines(content)
	blocks, err := findBlocks(lines)
	if err != nil {
		return entities.ModeUnknown
	}

	for _, b := range blocks {
		if b.Interface == name {
			if stanza, err := decodeStanza(blockContent(lines, b)); err == nil {
				return stanzaMode(stanza.Method)
			}
		}
	}
	if method, ok := userStanzas(userLines(lines, blocks))[name]; ok {
		return stanzaMode(method)
	}
	return entities.ModeUnknown
}
