package constants

// Standard host locations
const (
	NetplanConfigDir     = "/etc/netplan"
	InterfacesFile       = "/etc/network/interfaces"
	NetworkManagerDir    = "/etc/NetworkManager/system-connections"
	ResolvConf           = "/etc/resolv.conf"
	HostnameFile         = "/etc/hostname"
	HostsFile            = "/etc/hosts"
	DefaultBackupDir     = "/var/lib/linuxnet/backups"
	SystemdRuntimeDir    = "/run/systemd/system"
	DockerEnvMarker      = "/.dockerenv"
	PodmanEnvMarker      = "/run/.containerenv"
	InitCgroupFile       = "/proc/1/cgroup"
	NetworkingInitScript = "/etc/init.d/networking"
)

// Generated artifact naming
const (
	// ArtifactPrefix keys every generated file, stanza and connection
	ArtifactPrefix = "linuxnet"

	// NetplanFilePriority sorts generated files after distribution defaults
	NetplanFilePriority = "90"

	// GeneratedMarker is the first line of every generated netplan file
	GeneratedMarker = "# linuxnet: generated, changes will be overwritten"

	NetplanFilePermission    = 0600
	InterfacesFilePermission = 0644
	HostFilePermission       = 0644
)

// Defaults
const (
	DefaultAPIPort    = "8000"
	DefaultHealthPort = "8080"
	DefaultLogLevel   = "info"
	DefaultMaxBackups = 5
)
