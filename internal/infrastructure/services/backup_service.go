package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const backupTimestampFormat = "20060102_150405"

// BackupService keeps timestamped copies of artifacts before they change
type BackupService struct {
	fileSystem interfaces.FileSystem
	clock      interfaces.Clock
	logger     *logrus.Logger
	backupDir  string
	maxBackups int
}

// NewBackupService creates a new BackupService. maxBackups <= 0 keeps every backup.
func NewBackupService(
	fs interfaces.FileSystem,
	clock interfaces.Clock,
	logger *logrus.Logger,
	backupDir string,
	maxBackups int,
) *BackupService {
	return &BackupService{
		fileSystem: fs,
		clock:      clock,
		logger:     logger,
		backupDir:  backupDir,
		maxBackups: maxBackups,
	}
}

// CreateBackup copies configPath to <backupDir>/<iface>_<timestamp><ext>.
// A missing source is not an error.
func (s *BackupService) CreateBackup(ctx context.Context, interfaceName string, configPath string) error {
	logger := s.logger.WithFields(logrus.Fields{
		"interface":   interfaceName,
		"config_path": configPath,
	})

	if !s.fileSystem.Exists(configPath) {
		logger.Debug("No existing configuration to back up")
		return nil
	}

	content, err := s.fileSystem.ReadFile(configPath)
	if err != nil {
		return errors.NewPersistenceError(fmt.Sprintf("failed to read %s for backup", configPath), err)
	}

	if err := s.fileSystem.MkdirAll(s.backupDir, 0755); err != nil {
		return errors.NewPersistenceError("failed to create backup directory", err)
	}

	timestamp := s.clock.Now().Format(backupTimestampFormat)
	backupPath := filepath.Join(s.backupDir, fmt.Sprintf("%s_%s%s", interfaceName, timestamp, filepath.Ext(configPath)))

	if err := s.fileSystem.WriteFile(backupPath, content, 0600); err != nil {
		return errors.NewPersistenceError(fmt.Sprintf("failed to write backup %s", backupPath), err)
	}
	logger.WithField("backup_path", backupPath).Info("Configuration backup created")

	s.prune(interfaceName)
	return nil
}

// ListBackups returns the backup file names of an interface, oldest first
func (s *BackupService) ListBackups(ctx context.Context, interfaceName string) ([]string, error) {
	return s.findBackupFiles(interfaceName)
}

// prune removes the oldest backups beyond maxBackups
func (s *BackupService) prune(interfaceName string) {
	if s.maxBackups <= 0 {
		return
	}
	files, err := s.findBackupFiles(interfaceName)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list backups for pruning")
		return
	}
	for len(files) > s.maxBackups {
		path := filepath.Join(s.backupDir, files[0])
		if err := s.fileSystem.Remove(path); err != nil {
			s.logger.WithError(err).WithField("backup_path", path).Warn("Failed to prune backup")
			return
		}
		files = files[1:]
	}
}

// findBackupFiles returns the sorted backups of one interface; names sort chronologically
func (s *BackupService) findBackupFiles(interfaceName string) ([]string, error) {
	if !s.fileSystem.Exists(s.backupDir) {
		return []string{}, nil
	}

	files, err := s.fileSystem.ListFiles(s.backupDir)
	if err != nil {
		return nil, errors.NewPersistenceError("failed to read backup directory", err)
	}

	backupFiles := []string{}
	prefix := interfaceName + "_"
	for _, file := range files {
		if isBackupOf(file, prefix) {
			backupFiles = append(backupFiles, file)
		}
	}
	sort.Strings(backupFiles)

	return backupFiles, nil
}

// isBackupOf matches "<prefix><timestamp>[ext]"
func isBackupOf(file, prefix string) bool {
	if !strings.HasPrefix(file, prefix) {
		return false
	}
	rest := strings.TrimPrefix(file, prefix)
	if len(rest) < len(backupTimestampFormat) {
		return false
	}
	for i, c := range rest[:len(backupTimestampFormat)] {
		if backupTimestampFormat[i] == '_' {
			if c != '_' {
				return false
			}
		} else if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
