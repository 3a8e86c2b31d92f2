package adapters

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/metrics"
)

var permissionMarkers = []string{
	"operation not permitted",
	"permission denied",
	"must be root",
	"insufficient privileges",
}

// RealCommandExecutor is a CommandExecutor implementation that executes actual system commands.
// Every command is bounded by a timeout so a hung tool cannot stall a request.
type RealCommandExecutor struct {
	defaultTimeout time.Duration
}

// NewRealCommandExecutor creates a new RealCommandExecutor
func NewRealCommandExecutor(defaultTimeout time.Duration) interfaces.CommandExecutor {
	if defaultTimeout <= 0 {
		defaultTimeout = 30 * time.Second
	}
	return &RealCommandExecutor{defaultTimeout: defaultTimeout}
}

// Execute executes a command under the default timeout and returns its stdout
func (e *RealCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	return e.ExecuteWithTimeout(ctx, e.defaultTimeout, command, args...)
}

// ExecuteWithTimeout executes a command with timeout
func (e *RealCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	metrics.RecordCommand(command, time.Since(start).Seconds(), err == nil)

	if err == nil {
		return stdout.Bytes(), nil
	}

	commandLine := strings.TrimSpace(command + " " + strings.Join(args, " "))

	// Convert to timeout error when context deadline exceeded
	if ctx.Err() == context.DeadlineExceeded {
		return nil, errors.NewCommandExecutionError(
			fmt.Sprintf("command timed out after %v: %s", timeout, commandLine),
			ctx.Err(),
		)
	}

	cause := fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	if isPermissionFailure(err, stderr.String()) {
		return nil, errors.NewPermissionError(fmt.Sprintf("insufficient privilege: %s", commandLine), cause)
	}

	return nil, errors.NewCommandExecutionError(fmt.Sprintf("command execution failed: %s", commandLine), cause)
}

func isPermissionFailure(err error, stderr string) bool {
	if stderrors.Is(err, os.ErrPermission) {
		return true
	}
	lower := strings.ToLower(stderr)
	for _, marker := range permissionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
