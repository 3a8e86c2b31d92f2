package network

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/adapters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userInterfaces = `# interfaces(5) file used by ifup(8) and ifdown(8)
source /etc/network/interfaces.d/*

auto lo
iface lo inet loopback

auto eth1
iface eth1 inet dhcp
`

func setupInterfacesStore(t *testing.T, initial string) (*InterfacesAdapter, *ConfigFileGenerator, Paths) {
	t.Helper()
	paths := testPaths(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.InterfacesFile), 0755))
	if initial != "" {
		require.NoError(t, os.WriteFile(paths.InterfacesFile, []byte(initial), 0644))
	}
	return NewInterfacesAdapter(adapters.NewRealFileSystem(), newTestLogger(), paths), NewConfigFileGenerator(paths), paths
}

func TestInterfacesAdapter_WriteAppendsBlock(t *testing.T) {
	store, generator, paths := setupInterfacesStore(t, userInterfaces)
	ctx := context.Background()

	artifact, err := generator.Generate(entities.BackendInterfaces, "eth0", staticConfig, nil)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, artifact))

	content, err := os.ReadFile(paths.InterfacesFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), userInterfaces))
	assert.Contains(t, string(content), "# BEGIN linuxnet eth0\n")
	assert.Contains(t, string(content), "    address 192.168.1.100\n")

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].SystemGenerated)
	assert.Equal(t, "eth0", list[0].Interface)
	assert.False(t, list[1].SystemGenerated)
	assert.Equal(t, []string{"eth1", "lo"}, list[1].Interfaces)
}

func TestInterfacesAdapter_RewriteReplacesInPlace(t *testing.T) {
	store, generator, paths := setupInterfacesStore(t, userInterfaces)
	ctx := context.Background()

	first, err := generator.Generate(entities.BackendInterfaces, "eth0", staticConfig, nil)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, first))

	existing, err := store.Find(ctx, "eth0")
	require.NoError(t, err)
	require.NotNil(t, existing)

	second, err := generator.Generate(entities.BackendInterfaces, "eth0", dhcpConfig, existing)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, second))

	content, err := os.ReadFile(paths.InterfacesFile)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "# BEGIN linuxnet eth0"))
	assert.Equal(t, 1, strings.Count(string(content), "iface eth0 "))
	assert.Contains(t, string(content), "iface eth0 inet dhcp")
	assert.NotContains(t, string(content), "192.168.1.100")
	assert.Equal(t, entities.ModeDHCP, store.ModeOf(ctx, "eth0"))
}

func TestInterfacesAdapter_IdenticalWritesAreIdempotent(t *testing.T) {
	store, generator, paths := setupInterfacesStore(t, userInterfaces)
	ctx := context.Background()

	artifact, err := generator.Generate(entities.BackendInterfaces, "eth0", staticConfig, nil)
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, artifact))
	once, err := os.ReadFile(paths.InterfacesFile)
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, artifact))
	twice, err := os.ReadFile(paths.InterfacesFile)
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))
}

func TestInterfacesAdapter_RemoveRestoresUserContent(t *testing.T) {
	store, generator, paths := setupInterfacesStore(t, userInterfaces)
	ctx := context.Background()

	for _, name := range []string{"eth0", "ens3"} {
		artifact, err := generator.Generate(entities.BackendInterfaces, name, staticConfig, nil)
		require.NoError(t, err)
		require.NoError(t, store.Write(ctx, artifact))
	}

	for _, name := range []string{"eth0", "ens3"} {
		found, err := store.Find(ctx, name)
		require.NoError(t, err)
		require.NotNil(t, found)
		require.NoError(t, store.Remove(ctx, *found))
	}

	content, err := os.ReadFile(paths.InterfacesFile)
	require.NoError(t, err)
	assert.Equal(t, userInterfaces, string(content))
}

func TestInterfacesAdapter_WriteRemoveKeepsUserBytes(t *testing.T) {
	tests := []struct {
		name string
		user string
	}{
		{"single trailing newline", "auto lo\niface lo inet loopback\n"},
		{"trailing blank lines", "auto lo\niface lo inet loopback\n\n\n"},
		{"one trailing blank line", "auto lo\niface lo inet loopback\n\n"},
		{"trailing whitespace line", "auto lo\niface lo inet loopback\n  \n"},
		{"blank lines inside", "auto lo\n\n\niface lo inet loopback\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, generator, paths := setupInterfacesStore(t, tt.user)
			ctx := context.Background()

			artifact, err := generator.Generate(entities.BackendInterfaces, "eth0", staticConfig, nil)
			require.NoError(t, err)
			require.NoError(t, store.Write(ctx, artifact))

			written, err := os.ReadFile(paths.InterfacesFile)
			require.NoError(t, err)
			assert.Equal(t, tt.user+"\n"+string(artifact.Rendered), string(written))

			found, err := store.Find(ctx, "eth0")
			require.NoError(t, err)
			require.NotNil(t, found)
			require.NoError(t, store.Remove(ctx, *found))

			content, err := os.ReadFile(paths.InterfacesFile)
			require.NoError(t, err)
			assert.Equal(t, tt.user, string(content))
		})
	}
}

func TestInterfacesAdapter_UserStanzaMode(t *testing.T) {
	store, _, _ := setupInterfacesStore(t, userInterfaces)
	ctx := context.Background()

	assert.Equal(t, entities.ModeDHCP, store.ModeOf(ctx, "eth1"))
	assert.Equal(t, entities.ModeUnknown, store.ModeOf(ctx, "lo"))
	assert.Equal(t, entities.ModeUnknown, store.ModeOf(ctx, "eth9"))

	found, err := store.Find(ctx, "eth1")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestInterfacesAdapter_MissingFile(t *testing.T) {
	store, generator, paths := setupInterfacesStore(t, "")
	ctx := context.Background()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	artifact, err := generator.Generate(entities.BackendInterfaces, "eth0", dhcpConfig, nil)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, artifact))

	content, err := os.ReadFile(paths.InterfacesFile)
	require.NoError(t, err)
	assert.Equal(t, string(artifact.Rendered), string(content))
}

func TestInterfacesAdapter_UnterminatedBlock(t *testing.T) {
	store, generator, _ := setupInterfacesStore(t, userInterfaces+"# BEGIN linuxnet eth0\nauto eth0\n")
	ctx := context.Background()

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ParseError)

	artifact, err := generator.Generate(entities.BackendInterfaces, "eth0", dhcpConfig, nil)
	require.NoError(t, err)
	assert.Error(t, store.Write(ctx, artifact))
}
