package adapters

import (
	"os"
	"os/exec"
	"strings"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/constants"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"
)

var cgroupContainerHints = []string{"docker", "containerd", "kubepods", "lxc", "libpod"}

// networkTools are reported by AvailableTools
var networkTools = []string{"ip", "netplan", "nmcli", "ifup", "ifdown", "dhclient", "systemctl", "hostnamectl"}

// RealEnvironmentDetector classifies the process as running in a container or on a host
type RealEnvironmentDetector struct {
	fileSystem interfaces.FileSystem
	override   *bool
	getenv     func(string) string
	lookPath   func(string) (string, error)
}

// NewRealEnvironmentDetector creates a detector. A non-nil override replaces marker detection.
func NewRealEnvironmentDetector(fs interfaces.FileSystem, override *bool) *RealEnvironmentDetector {
	return &RealEnvironmentDetector{
		fileSystem: fs,
		override:   override,
		getenv:     os.Getenv,
		lookPath:   exec.LookPath,
	}
}

// DetectEnvironment returns the container classification and the disabled capabilities
func (d *RealEnvironmentDetector) DetectEnvironment() entities.ContainerEnvironment {
	markers := d.markers()
	serviceManager := d.fileSystem.Exists(constants.SystemdRuntimeDir)

	if d.override != nil {
		env := entities.NewContainerEnvironment(*d.override, serviceManager, markers)
		env.Overridden = true
		return env
	}

	return entities.NewContainerEnvironment(len(markers) > 0, serviceManager, markers)
}

// AvailableTools reports which network tools can be found on PATH
func (d *RealEnvironmentDetector) AvailableTools() map[string]bool {
	tools := make(map[string]bool, len(networkTools))
	for _, tool := range networkTools {
		_, err := d.lookPath(tool)
		tools[tool] = err == nil
	}
	return tools
}

func (d *RealEnvironmentDetector) markers() []string {
	var markers []string

	if d.fileSystem.Exists(constants.DockerEnvMarker) {
		markers = append(markers, constants.DockerEnvMarker)
	}
	if d.fileSystem.Exists(constants.PodmanEnvMarker) {
		markers = append(markers, constants.PodmanEnvMarker)
	}
	if v := d.getenv("container"); v != "" {
		markers = append(markers, "env:container="+v)
	}
	if d.getenv("DOCKER_CONTAINER") != "" {
		markers = append(markers, "env:DOCKER_CONTAINER")
	}

	if content, err := d.fileSystem.ReadFile(constants.InitCgroupFile); err == nil {
		cgroup := string(content)
		for _, hint := range cgroupContainerHints {
			if strings.Contains(cgroup, hint) {
				markers = append(markers, "cgroup:"+hint)
				break
			}
		}
	}

	return markers
}
