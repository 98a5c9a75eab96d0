package system

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"k8s.io/klog/v2"

	"github.com/skupperproject/skupper-ansible/pkg/platform"
)

// ContainerAPI is the slice of the engine API the bootstrap run needs. The
// docker client implements it for both engines, the podman socket speaks
// the same protocol.
type ContainerAPI interface {
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

// NewEngineClient dials the engine endpoint resolved from env.
func NewEngineClient(env *platform.Env, engine platform.Engine) (*client.Client, error) {
	endpoint := env.Endpoint(engine)
	if endpoint == "" {
		return nil, fmt.Errorf("no endpoint for engine %q", engine)
	}
	engineClient, err := client.NewClientWithOpts(client.WithHost(endpoint), client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("unable to build engine client for %q: %w", endpoint, err)
	}
	return engineClient, nil
}

// runBootstrap runs the bootstrap image to completion. The image is pulled
// on demand and the container is always removed; a non-zero exit surfaces
// the container output.
func (m *Manager) runBootstrap(ctx context.Context, name string, cmd []string) error {
	logger := klog.FromContext(ctx)

	runAs, err := m.env.RunAs(m.engine)
	if err != nil {
		return err
	}
	config := &container.Config{
		Image: m.image,
		Cmd:   cmd,
		Env:   m.envVars(),
		User:  runAs,
	}
	hostConfig := &container.HostConfig{
		NetworkMode: network.NetworkHost,
		SecurityOpt: []string{"label=disable"},
		UsernsMode:  container.UsernsMode(m.env.UserNS(m.engine)),
		Binds:       m.binds(),
	}

	if _, err := m.api.ContainerCreate(ctx, config, hostConfig, nil, nil, name); err != nil {
		if !errdefs.IsNotFound(err) {
			return fmt.Errorf("unable to create container %q: %w", name, err)
		}
		if err := m.pullImage(ctx); err != nil {
			return err
		}
		if _, err := m.api.ContainerCreate(ctx, config, hostConfig, nil, nil, name); err != nil {
			return fmt.Errorf("unable to create container %q: %w", name, err)
		}
	}
	defer func() {
		if err := m.api.ContainerRemove(ctx, name, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
			logger.V(2).Info("Unable to remove bootstrap container", "name", name, "err", err)
		}
	}()

	if err := m.api.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return fmt.Errorf("unable to start container %q: %w", name, err)
	}

	var status container.WaitResponse
	waitCh, errCh := m.api.ContainerWait(ctx, name, container.WaitConditionNotRunning)
	select {
	case status = <-waitCh:
	case err := <-errCh:
		return fmt.Errorf("unable to wait for container %q: %w", name, err)
	case <-ctx.Done():
		return ctx.Err()
	}

	if status.StatusCode != 0 {
		output := m.containerOutput(ctx, name)
		if output == "" && status.Error != nil {
			output = status.Error.Message
		}
		return fmt.Errorf("bootstrap exited with code %d: %s", status.StatusCode, output)
	}
	return nil
}

func (m *Manager) pullImage(ctx context.Context) error {
	klog.FromContext(ctx).V(2).Info("Pulling image", "image", m.image)
	resp, err := m.api.ImagePull(ctx, m.image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("unable to pull image %q: %w", m.image, err)
	}
	defer resp.Close()
	if _, err := io.Copy(io.Discard, resp); err != nil {
		return fmt.Errorf("unable to pull image %q: %w", m.image, err)
	}
	return nil
}

// containerOutput returns the container stdout, falling back to stderr.
func (m *Manager) containerOutput(ctx context.Context, name string) string {
	rc, err := m.api.ContainerLogs(ctx, name, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return ""
	}
	defer rc.Close()
	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, rc); err != nil {
		return ""
	}
	if out := strings.TrimSpace(stdout.String()); out != "" {
		return out
	}
	return strings.TrimSpace(stderr.String())
}

// binds mounts the data home into the bootstrap and, except for the systemd
// platform, the engine socket.
func (m *Manager) binds() []string {
	binds := []string{m.env.DataHome() + ":/output:z"}
	endpoint := m.env.Endpoint(m.engine)
	if m.platform != platform.PlatformSystemd && platform.IsSocketEndpoint(endpoint) {
		binds = append(binds, fmt.Sprintf("%s:/%s.sock:z", platform.SocketPath(endpoint), m.engine))
	}
	return binds
}

func (m *Manager) envVars() []string {
	vars := []string{
		"SKUPPER_OUTPUT_PATH=" + m.env.DataHome(),
		"SKUPPER_PLATFORM=" + string(m.platform),
	}
	if m.platform == platform.PlatformSystemd {
		return vars
	}
	endpoint := m.env.Endpoint(m.engine)
	if platform.IsSocketEndpoint(endpoint) {
		vars = append(vars, fmt.Sprintf("CONTAINER_ENDPOINT=/%s.sock", m.engine))
	} else {
		vars = append(vars, "CONTAINER_ENDPOINT="+endpoint)
	}
	return vars
}
