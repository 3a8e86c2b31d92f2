package network

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a mock implementation of CommandExecutor
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	mockArgs := m.Called(ctx, command, args)
	out, _ := mockArgs.Get(0).([]byte)
	return out, mockArgs.Error(1)
}

func (m *MockCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	mockArgs := m.Called(ctx, timeout, command, args)
	out, _ := mockArgs.Get(0).([]byte)
	return out, mockArgs.Error(1)
}

// MockFileSystem is a mock implementation of FileSystem
type MockFileSystem struct {
	mock.Mock
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	args := m.Called(path, data, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Exists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	args := m.Called(path, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockFileSystem) ListFiles(path string) ([]string, error) {
	args := m.Called(path)
	files, _ := args.Get(0).([]string)
	return files, args.Error(1)
}

func (m *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	args := m.Called(path)
	info, _ := args.Get(0).(os.FileInfo)
	return info, args.Error(1)
}

// MockEnvironmentDetector is a mock implementation of EnvironmentDetector
type MockEnvironmentDetector struct {
	mock.Mock
}

func (m *MockEnvironmentDetector) DetectEnvironment() entities.ContainerEnvironment {
	args := m.Called()
	return args.Get(0).(entities.ContainerEnvironment)
}

func (m *MockEnvironmentDetector) AvailableTools() map[string]bool {
	args := m.Called()
	tools, _ := args.Get(0).(map[string]bool)
	return tools
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
