package platform

import (
	"fmt"
)

// Platform identifies where a skupper namespace lives: a kubernetes cluster
// or a local container engine / systemd host.
type Platform string

const (
	PlatformKubernetes Platform = "kubernetes"
	PlatformPodman     Platform = "podman"
	PlatformDocker     Platform = "docker"
	PlatformSystemd    Platform = "systemd"
)

// Engine is the container engine used to run the bootstrap on non-kube
// platforms.
type Engine string

const (
	EnginePodman Engine = "podman"
	EngineDocker Engine = "docker"
)

// Parse validates a platform choice. Empty selects kubernetes, matching the
// collection defaults.
func Parse(value string) (Platform, error) {
	switch Platform(value) {
	case "":
		return PlatformKubernetes, nil
	case PlatformKubernetes, PlatformPodman, PlatformDocker, PlatformSystemd:
		return Platform(value), nil
	}
	return "", fmt.Errorf("unsupported platform %q", value)
}

// ParseEngine validates a container engine choice. Empty selects podman.
func ParseEngine(value string) (Engine, error) {
	switch Engine(value) {
	case "":
		return EnginePodman, nil
	case EnginePodman, EngineDocker:
		return Engine(value), nil
	}
	return "", fmt.Errorf("unsupported container engine %q", value)
}

// IsKube reports whether declarative objects go to a cluster instead of the
// namespace filesystem layout.
func (p Platform) IsKube() bool {
	switch p {
	case PlatformPodman, PlatformDocker, PlatformSystemd:
		return false
	}
	return true
}
