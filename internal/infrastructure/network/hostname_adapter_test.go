package network

import (
	"context"
	"os"
	"testing"

	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/adapters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHostnameAdapter_Current(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(e *MockCommandExecutor)
		file       string
		want       string
		wantErr    bool
	}{
		{
			name: "hostnamectl",
			setupMocks: func(e *MockCommandExecutor) {
				e.On("Execute", mock.Anything, "hostnamectl", []string{"hostname"}).Return([]byte("node-1\n"), nil)
			},
			want: "node-1",
		},
		{
			name: "hostname command",
			setupMocks: func(e *MockCommandExecutor) {
				e.On("Execute", mock.Anything, "hostnamectl", mock.Anything).Return(nil, errExit)
				e.On("Execute", mock.Anything, "hostname", []string(nil)).Return([]byte("node-2\n"), nil)
			},
			want: "node-2",
		},
		{
			name: "hostname file",
			setupMocks: func(e *MockCommandExecutor) {
				e.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(nil, errExit)
			},
			file: "node-3\n",
			want: "node-3",
		},
		{
			name: "nothing available",
			setupMocks: func(e *MockCommandExecutor) {
				e.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(nil, errExit)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := testPaths(t.TempDir())
			if tt.file != "" {
				require.NoError(t, os.WriteFile(paths.HostnameFile, []byte(tt.file), 0644))
			}
			executor := new(MockCommandExecutor)
			tt.setupMocks(executor)
			adapter := NewHostnameAdapter(executor, adapters.NewRealFileSystem(), paths, newTestLogger())

			got, err := adapter.Current(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHostnameAdapter_Set(t *testing.T) {
	paths := testPaths(t.TempDir())
	require.NoError(t, os.WriteFile(paths.HostsFile, []byte("127.0.0.1\tlocalhost\n::1\tlocalhost ip6-localhost\n"), 0644))

	executor := new(MockCommandExecutor)
	executor.On("Execute", mock.Anything, "hostnamectl", []string{"set-hostname", "edge-01"}).Return(nil, nil)
	adapter := NewHostnameAdapter(executor, adapters.NewRealFileSystem(), paths, newTestLogger())

	actions, warnings, err := adapter.Set(context.Background(), "edge-01", true)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Contains(t, actions, "hostnamectl set-hostname edge-01")

	hostname, err := os.ReadFile(paths.HostnameFile)
	require.NoError(t, err)
	assert.Equal(t, "edge-01\n", string(hostname))

	hosts, err := os.ReadFile(paths.HostsFile)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1\tlocalhost\n127.0.1.1\tedge-01\n::1\tlocalhost ip6-localhost\n", string(hosts))

	// a second rename rewrites the same line
	executor.On("Execute", mock.Anything, "hostname", []string{"edge-02"}).Return(nil, nil)
	_, _, err = adapter.Set(context.Background(), "edge-02", false)
	require.NoError(t, err)
	hosts, err = os.ReadFile(paths.HostsFile)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1\tlocalhost\n127.0.1.1\tedge-02\n::1\tlocalhost ip6-localhost\n", string(hosts))
}

func TestHostnameAdapter_SetWithoutServiceManager(t *testing.T) {
	paths := testPaths(t.TempDir())
	executor := new(MockCommandExecutor)
	executor.On("Execute", mock.Anything, "hostname", []string{"edge-01"}).Return(nil, errExit)
	adapter := NewHostnameAdapter(executor, adapters.NewRealFileSystem(), paths, newTestLogger())

	actions, warnings, err := adapter.Set(context.Background(), "edge-01", false)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "running hostname not changed")
	assert.Contains(t, actions, "updated "+paths.HostnameFile)
	executor.AssertNotCalled(t, "Execute", mock.Anything, "hostnamectl", mock.Anything)
}

func TestResolvConfReader_Nameservers(t *testing.T) {
	paths := testPaths(t.TempDir())
	require.NoError(t, os.WriteFile(paths.ResolvConf, []byte("# generated\nsearch lan\nnameserver 8.8.8.8\nnameserver 1.1.1.1\n"), 0644))

	reader := NewResolvConfReader(adapters.NewRealFileSystem(), paths)
	servers, err := reader.Nameservers()
	require.NoError(t, err)
	assert.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, servers)
}
