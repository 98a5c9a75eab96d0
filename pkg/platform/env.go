package platform

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

// Env resolves the filesystem layout and container endpoints of non-kube
// namespaces. Every input is an explicit field so tests can pin the whole
// environment; NewEnv captures the process environment once.
type Env struct {
	UID  int
	GID  int
	Home string

	// DockerGID is the docker group id, 0 when the group is unknown.
	DockerGID int

	XDGDataHome   string
	XDGConfigHome string
	XDGRuntimeDir string

	// ContainerEndpoint overrides the engine socket resolution when set.
	ContainerEndpoint string
}

func NewEnv() *Env {
	e := &Env{
		UID:               os.Getuid(),
		GID:               os.Getgid(),
		Home:              os.Getenv("HOME"),
		XDGDataHome:       os.Getenv("XDG_DATA_HOME"),
		XDGConfigHome:     os.Getenv("XDG_CONFIG_HOME"),
		XDGRuntimeDir:     os.Getenv("XDG_RUNTIME_DIR"),
		ContainerEndpoint: os.Getenv("CONTAINER_ENDPOINT"),
	}
	if group, err := user.LookupGroup("docker"); err == nil {
		if gid, err := strconv.Atoi(group.Gid); err == nil {
			e.DockerGID = gid
		}
	}
	return e
}

// DataHome is the skupper state directory: /var/lib/skupper for root,
// $XDG_DATA_HOME/skupper or ~/.local/share/skupper otherwise.
func (e *Env) DataHome() string {
	if e.UID == 0 {
		return filepath.Join("/var/lib", "skupper")
	}
	base := e.XDGDataHome
	if base == "" {
		base = filepath.Join(e.Home, ".local", "share")
	}
	return filepath.Join(base, "skupper")
}

// NamespaceHome is the per-namespace directory under the data home. An empty
// namespace means default.
func (e *Env) NamespaceHome(namespace string) string {
	if namespace == "" {
		namespace = "default"
	}
	return filepath.Join(e.DataHome(), "namespaces", namespace)
}

// ResourcesDir holds the declarative objects placed into a namespace.
func (e *Env) ResourcesDir(namespace string) string {
	return filepath.Join(e.NamespaceHome(namespace), "input", "resources")
}

// LinksDir holds the static link files the bootstrap generated for a
// namespace.
func (e *Env) LinksDir(namespace string) string {
	return filepath.Join(e.NamespaceHome(namespace), "runtime", "links")
}

// RuntimeStateDir is created by the bootstrap once a namespace was set up.
func (e *Env) RuntimeStateDir(namespace string) string {
	return filepath.Join(e.NamespaceHome(namespace), "runtime")
}

// ScriptsDir holds the service definitions the bootstrap generated.
func (e *Env) ScriptsDir(namespace string) string {
	return filepath.Join(e.NamespaceHome(namespace), "internal", "scripts")
}

// BundlesDir holds generated site bundles.
func (e *Env) BundlesDir() string {
	return filepath.Join(e.DataHome(), "bundles")
}

// RuntimeDir is the base directory for engine sockets.
func (e *Env) RuntimeDir() string {
	if e.XDGRuntimeDir != "" {
		return e.XDGRuntimeDir
	}
	if e.UID == 0 {
		return "/run"
	}
	return fmt.Sprintf("/run/user/%d", e.UID)
}

// ServiceDir is where systemd units are installed: the system directory for
// root, the user unit directory otherwise.
func (e *Env) ServiceDir() string {
	if e.UID == 0 {
		return "/etc/systemd/system"
	}
	base := e.XDGConfigHome
	if base == "" {
		base = filepath.Join(e.Home, ".config")
	}
	return filepath.Join(base, "systemd", "user")
}

// Endpoint resolves the engine API endpoint, honoring the
// CONTAINER_ENDPOINT override.
func (e *Env) Endpoint(engine Engine) string {
	if e.ContainerEndpoint != "" {
		return e.ContainerEndpoint
	}
	switch engine {
	case EngineDocker:
		return "unix://" + filepath.Join(e.RuntimeDir(), "docker.sock")
	case EnginePodman:
		return "unix://" + filepath.Join(e.RuntimeDir(), "podman", "podman.sock")
	}
	return ""
}

// IsSocketEndpoint reports whether an endpoint points at a local unix
// socket rather than a TCP daemon.
func IsSocketEndpoint(endpoint string) bool {
	return strings.HasPrefix(endpoint, "/") || strings.HasPrefix(endpoint, "unix://")
}

// SocketPath strips the unix scheme off a socket endpoint so it can be bind
// mounted.
func SocketPath(endpoint string) string {
	return strings.TrimPrefix(endpoint, "unix://")
}

// RunAs returns the uid:gid the bootstrap runs with. Docker engines run
// with the docker group so the engine socket stays writable.
func (e *Env) RunAs(engine Engine) (string, error) {
	gid := e.GID
	if engine == EngineDocker {
		if e.DockerGID == 0 {
			return "", errors.New("unable to determine docker group id")
		}
		gid = e.DockerGID
	}
	return fmt.Sprintf("%d:%d", e.UID, gid), nil
}

// UserNS returns the user namespace mode for the engine. Docker always maps
// to the host, rootless podman keeps the caller id.
func (e *Env) UserNS(engine Engine) string {
	switch engine {
	case EngineDocker:
		return "host"
	case EnginePodman:
		if e.UID != 0 {
			return "keep-id"
		}
	}
	return ""
}
