package network

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/adapters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const userKeyfile = `[connection]
id=Wired connection 1
type=ethernet
interface-name=eth0

[ipv4]
method=auto
`

func setupNMStore(t *testing.T) (*NetworkManagerAdapter, *MockCommandExecutor, *ConfigFileGenerator, Paths) {
	t.Helper()
	paths := testPaths(t.TempDir())
	require.NoError(t, os.MkdirAll(paths.NMConnectionsDir, 0755))
	executor := new(MockCommandExecutor)
	store := NewNetworkManagerAdapter(executor, adapters.NewRealFileSystem(), newTestLogger(), paths)
	return store, executor, NewConfigFileGenerator(paths), paths
}

func TestNetworkManagerAdapter_WriteLoadsProfile(t *testing.T) {
	store, executor, generator, paths := setupNMStore(t)
	ctx := context.Background()

	artifact, err := generator.Generate(entities.BackendNetworkManager, "eth0", staticConfig, nil)
	require.NoError(t, err)

	executor.On("Execute", mock.Anything, "nmcli", []string{"connection", "load", paths.NMKeyfile("eth0")}).Return(nil, nil)

	require.NoError(t, store.Write(ctx, artifact))
	executor.AssertExpectations(t)

	info, err := os.Stat(paths.NMKeyfile("eth0"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	found, err := store.Find(ctx, "eth0")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.SystemGenerated)
	conn, ok := found.Content.(*entities.NMConnection)
	require.True(t, ok)
	assert.Equal(t, entities.NMMethodManual, conn.Method)
	assert.Equal(t, entities.ModeStatic, store.ModeOf(ctx, "eth0"))
}

func TestNetworkManagerAdapter_WriteSurvivesDaemonDown(t *testing.T) {
	store, executor, generator, _ := setupNMStore(t)

	artifact, err := generator.Generate(entities.BackendNetworkManager, "eth0", dhcpConfig, nil)
	require.NoError(t, err)

	executor.On("Execute", mock.Anything, "nmcli", mock.Anything).
		Return(nil, errors.NewCommandExecutionError("nmcli failed", stderrors.New("exit status 8")))

	require.NoError(t, store.Write(context.Background(), artifact))
	_, err = os.Stat(artifact.Path)
	assert.NoError(t, err)
}

func TestNetworkManagerAdapter_ListAndRemove(t *testing.T) {
	store, executor, generator, paths := setupNMStore(t)
	ctx := context.Background()

	userPath := filepath.Join(paths.NMConnectionsDir, "Wired connection 1.nmconnection")
	require.NoError(t, os.WriteFile(userPath, []byte(userKeyfile), 0600))

	executor.On("Execute", mock.Anything, "nmcli", []string{"connection", "load", paths.NMKeyfile("eth1")}).Return(nil, nil)
	artifact, err := generator.Generate(entities.BackendNetworkManager, "eth1", staticConfig, nil)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, artifact))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var generated, user *entities.GeneratedConfigArtifact
	for i := range list {
		if list[i].SystemGenerated {
			generated = &list[i]
		} else {
			user = &list[i]
		}
	}
	require.NotNil(t, generated)
	require.NotNil(t, user)
	assert.Equal(t, "eth1", generated.Interface)
	assert.Equal(t, "eth0", user.Interface)
	assert.Equal(t, entities.ModeDHCP, store.ModeOf(ctx, "eth0"))

	err = store.Remove(ctx, *user)
	require.Error(t, err)
	assert.True(t, errors.IsPersistenceError(err))

	executor.On("Execute", mock.Anything, "nmcli", []string{"connection", "delete", "linuxnet-eth1"}).
		Return(nil, errors.NewCommandExecutionError("nmcli failed", stderrors.New("not loaded")))
	require.NoError(t, store.Remove(ctx, *generated))

	_, err = os.Stat(generated.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(userPath)
	assert.NoError(t, err)
}

func TestNetworkManagerAdapter_MissingDirectory(t *testing.T) {
	paths := testPaths(t.TempDir())
	store := NewNetworkManagerAdapter(new(MockCommandExecutor), adapters.NewRealFileSystem(), newTestLogger(), paths)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, entities.ModeUnknown, store.ModeOf(context.Background(), "eth0"))
}
