package system

import (
	"context"
	"fmt"
	"os"

	"github.com/openshift/library-go/pkg/operator/events"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/skupperproject/skupper-ansible/pkg/platform"
)

// DefaultImage initializes sites and bundles unless overridden.
const DefaultImage = "quay.io/skupper/bootstrap:v2-latest"

// Manager drives the lifecycle of non-kube namespaces: it runs the
// bootstrap image to materialize a site definition, and installs the
// generated systemd unit so the site survives reboots.
type Manager struct {
	platform platform.Platform
	engine   platform.Engine
	image    string
	env      *platform.Env
	api      ContainerAPI
	systemd  Systemd
	clock    clock.Clock
	recorder events.Recorder
}

// NewManager returns a manager for one platform and engine. An empty image
// selects the default bootstrap image, a nil clock the real one.
func NewManager(p platform.Platform, engine platform.Engine, image string, env *platform.Env, api ContainerAPI, systemd Systemd, recorder events.Recorder, c clock.Clock) (*Manager, error) {
	if p.IsKube() {
		return nil, fmt.Errorf("platform %q is not managed through the local system", p)
	}
	if image == "" {
		image = DefaultImage
	}
	if c == nil {
		c = clock.RealClock{}
	}
	return &Manager{
		platform: p,
		engine:   engine,
		image:    image,
		env:      env,
		api:      api,
		systemd:  systemd,
		clock:    c,
		recorder: recorder,
	}, nil
}

// Setup initializes a namespace from its input resources. A namespace whose
// runtime state already exists is left alone.
func (m *Manager) Setup(ctx context.Context, namespace string) (bool, error) {
	return m.setup(ctx, namespace, false, "")
}

// Reload re-initializes a namespace, preserving its certificate authorities.
func (m *Manager) Reload(ctx context.Context, namespace string) (bool, error) {
	return m.setup(ctx, namespace, true, "")
}

// Start starts the namespace service.
func (m *Manager) Start(ctx context.Context, namespace string) (bool, error) {
	return m.serviceCommand(ctx, namespace, "start"), nil
}

// Stop stops the namespace service.
func (m *Manager) Stop(ctx context.Context, namespace string) (bool, error) {
	return m.serviceCommand(ctx, namespace, "stop"), nil
}

// Teardown stops and removes the namespace service and deletes the
// namespace definition.
func (m *Manager) Teardown(ctx context.Context, namespace string) (bool, error) {
	changed := m.removeService(ctx, namespace)
	home := m.env.NamespaceHome(namespace)
	if _, err := os.Stat(home); err != nil {
		if os.IsNotExist(err) {
			return changed, nil
		}
		return changed, fmt.Errorf("unable to inspect namespace home %q: %w", home, err)
	}
	if err := os.RemoveAll(home); err != nil {
		return changed, fmt.Errorf("unable to remove namespace %q: %w", namespace, err)
	}
	m.recorder.WithContext(ctx).Eventf("NamespaceRemoved", "removed namespace %q definition from %q", namespace, home)
	return true, nil
}

func (m *Manager) setup(ctx context.Context, namespace string, force bool, strategy string) (bool, error) {
	logger := klog.FromContext(ctx)
	recorder := m.recorder.WithContext(ctx)

	if strategy == "" && !force {
		if _, err := os.Stat(m.env.RuntimeStateDir(namespace)); err == nil {
			logger.V(2).Info("Namespace already exists, nothing to set up", "namespace", namespace)
			return false, nil
		}
	}
	if err := os.MkdirAll(m.env.DataHome(), 0o755); err != nil {
		return false, fmt.Errorf("unable to create base directory %q: %w", m.env.DataHome(), err)
	}

	name := fmt.Sprintf("skupper-setup-%d", m.clock.Now().Unix())
	cmd := []string{"/app/bootstrap", "-n", namespace}
	switch {
	case strategy != "":
		cmd = append(cmd, "-b", strategy)
	case force:
		cmd = append(cmd, "-f")
	}
	if err := m.runBootstrap(ctx, name, cmd); err != nil {
		return false, fmt.Errorf("unable to set up namespace %q: %w", namespace, err)
	}
	recorder.Eventf("NamespaceSetup", "bootstrapped namespace %q on platform %q", namespace, m.platform)

	if strategy == "" {
		m.installService(ctx, namespace)
	}
	return true, nil
}
