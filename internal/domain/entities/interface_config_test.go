package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterfaceConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		config    InterfaceConfig
		wantError bool
		errorType error
	}{
		{
			name: "valid static configuration",
			config: InterfaceConfig{
				IPAddress:  "192.168.1.100",
				Netmask:    "255.255.255.0",
				Gateway:    "192.168.1.1",
				DNSServers: []string{"8.8.8.8", "1.1.1.1"},
			},
		},
		{
			name:   "static with prefix length netmask",
			config: InterfaceConfig{IPAddress: "10.0.0.5", Netmask: "/16"},
		},
		{
			name:   "dhcp ignores static fields",
			config: InterfaceConfig{DHCP: true, IPAddress: "garbage", Netmask: "garbage"},
		},
		{
			name:      "static without address",
			config:    InterfaceConfig{Netmask: "255.255.255.0"},
			wantError: true,
			errorType: ErrMissingAddress,
		},
		{
			name:      "static without netmask",
			config:    InterfaceConfig{IPAddress: "192.168.1.100"},
			wantError: true,
			errorType: ErrMissingNetmask,
		},
		{
			name:      "ipv6 address rejected",
			config:    InterfaceConfig{IPAddress: "fe80::1", Netmask: "64"},
			wantError: true,
			errorType: ErrInvalidAddress,
		},
		{
			name:      "non contiguous netmask",
			config:    InterfaceConfig{IPAddress: "192.168.1.100", Netmask: "255.0.255.0"},
			wantError: true,
			errorType: ErrInvalidNetmask,
		},
		{
			name:      "prefix out of range",
			config:    InterfaceConfig{IPAddress: "192.168.1.100", Netmask: "33"},
			wantError: true,
			errorType: ErrInvalidNetmask,
		},
		{
			name:      "invalid gateway",
			config:    InterfaceConfig{IPAddress: "192.168.1.100", Netmask: "24", Gateway: "router"},
			wantError: true,
			errorType: ErrInvalidGateway,
		},
		{
			name:      "invalid dns with dhcp",
			config:    InterfaceConfig{DHCP: true, DNSServers: []string{"dns.example"}},
			wantError: true,
			errorType: ErrInvalidDNS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.errorType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInterfaceConfig_Normalize(t *testing.T) {
	static := InterfaceConfig{
		IPAddress:  " 192.168.1.100 ",
		Netmask:    "24",
		Gateway:    "192.168.1.1",
		DNSServers: []string{"8.8.8.8", " ", "1.1.1.1"},
	}.Normalize()

	assert.Equal(t, "192.168.1.100", static.IPAddress)
	assert.Equal(t, "255.255.255.0", static.Netmask)
	assert.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, static.DNSServers)

	dhcp := InterfaceConfig{DHCP: true, IPAddress: "192.168.1.100", Netmask: "24", Gateway: "192.168.1.1"}.Normalize()
	assert.Empty(t, dhcp.IPAddress)
	assert.Empty(t, dhcp.Netmask)
	assert.Empty(t, dhcp.Gateway)
	assert.True(t, dhcp.DHCP)
}

func TestInterfaceConfig_CIDR(t *testing.T) {
	cidr, err := InterfaceConfig{IPAddress: "192.168.1.100", Netmask: "255.255.255.0"}.CIDR()
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.100/24", cidr)

	cidr, err = InterfaceConfig{IPAddress: "10.1.2.3", Netmask: "255.255.240.0"}.CIDR()
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3/20", cidr)
}

func TestPrefixToNetmask(t *testing.T) {
	assert.Equal(t, "255.255.255.0", PrefixToNetmask(24))
	assert.Equal(t, "255.255.255.255", PrefixToNetmask(32))
	assert.Equal(t, "255.128.0.0", PrefixToNetmask(9))
	assert.Equal(t, "0.0.0.0", PrefixToNetmask(0))
}

func TestContainerEnvironment(t *testing.T) {
	container := NewContainerEnvironment(true, false, []string{"/.dockerenv"})
	assert.False(t, container.Allows(CapabilityServiceRestart))
	assert.False(t, container.Allows(CapabilityServiceEnable))
	assert.Equal(t, []Capability{CapabilityServiceEnable, CapabilityServiceRestart}, container.DisabledCapabilities())
	assert.Equal(t, "container", container.Label())

	systemdContainer := NewContainerEnvironment(true, true, nil)
	assert.True(t, systemdContainer.Allows(CapabilityServiceRestart))

	host := NewContainerEnvironment(false, true, nil)
	assert.True(t, host.Allows(CapabilityServiceRestart))
	assert.Empty(t, host.DisabledCapabilities())
	assert.Equal(t, "host", host.Label())
}

func TestConfigureResult_StateTracking(t *testing.T) {
	result := &ConfigureResult{}
	result.Advance(StateReceived)
	result.Advance(StateValidated)
	result.Advance(StateLiveApplied)
	result.Fail()

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, StateLiveApplied, result.FurthestState)
	assert.True(t, result.LiveChanged())
	assert.False(t, result.Durable())
}

func TestGeneratedConfigArtifact_Permissions(t *testing.T) {
	assert.Equal(t, "600", GeneratedConfigArtifact{Mode: 0600}.Permissions())
	assert.Equal(t, "644", GeneratedConfigArtifact{Mode: 0644}.Permissions())
	assert.Equal(t, "", GeneratedConfigArtifact{}.Permissions())
}
