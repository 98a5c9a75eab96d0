package system

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"github.com/skupperproject/skupper-ansible/pkg/platform"
)

// Systemd runs commands against the service manager.
type Systemd interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// systemctl shells out to the systemctl binary, with --user for non-root
// callers. Stdout is returned trimmed even when the command fails, so state
// queries like is-active keep their output.
type systemctl struct {
	user bool
}

func NewSystemctl(env *platform.Env) Systemd {
	return &systemctl{user: env.UID != 0}
}

func (s *systemctl) Run(ctx context.Context, args ...string) (string, error) {
	arguments := []string{}
	if s.user {
		arguments = append(arguments, "--user")
	}
	arguments = append(arguments, args...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "systemctl", arguments...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = err.Error()
		}
		return out, fmt.Errorf("systemctl %s: %s", strings.Join(args, " "), message)
	}
	return out, nil
}

// ServiceName is the systemd unit serving a namespace.
func ServiceName(namespace string) string {
	if namespace == "" {
		namespace = "default"
	}
	return fmt.Sprintf("skupper-%s.service", namespace)
}

// installService copies the unit the bootstrap generated into the systemd
// unit directory and enables it. Problems are warnings, never failures: a
// host without systemd still gets a working namespace definition.
func (m *Manager) installService(ctx context.Context, namespace string) bool {
	recorder := m.recorder.WithContext(ctx)

	if !m.systemdAvailable(ctx) {
		return false
	}
	name := ServiceName(namespace)
	source := filepath.Join(m.env.ScriptsDir(namespace), name)
	definition, err := os.ReadFile(source)
	if err != nil {
		recorder.Warningf("ServiceNotDefined", "service definition has not been generated: %q", source)
		return false
	}
	if err := os.MkdirAll(m.env.ServiceDir(), 0o755); err != nil {
		recorder.Warningf("ServiceInstallFailed", "unable to create unit directory %q: %v", m.env.ServiceDir(), err)
		return false
	}
	target := filepath.Join(m.env.ServiceDir(), name)
	if err := os.WriteFile(target, definition, 0o644); err != nil {
		recorder.Warningf("ServiceInstallFailed", "unable to write unit file %q: %v", target, err)
		return false
	}
	changed := true

	if _, err := m.systemd.Run(ctx, "enable", "--now", name); err != nil {
		recorder.Warningf("ServiceEnableFailed", "unable to enable service %q: %v", name, err)
	}
	if _, err := m.systemd.Run(ctx, "daemon-reload"); err != nil {
		recorder.Warningf("ServiceReloadFailed", "unable to reload the service manager: %v", err)
	}
	return changed
}

// removeService disables and deletes the namespace unit.
func (m *Manager) removeService(ctx context.Context, namespace string) bool {
	recorder := m.recorder.WithContext(ctx)

	if !m.systemdAvailable(ctx) {
		return false
	}
	name := ServiceName(namespace)
	unit := filepath.Join(m.env.ServiceDir(), name)
	if _, err := os.Stat(unit); err != nil {
		recorder.Warningf("ServiceNotDefined", "service has not been installed: %q", unit)
	}

	changed := false
	if _, err := m.systemd.Run(ctx, "disable", "--now", name); err != nil {
		recorder.Warningf("ServiceDisableFailed", "unable to disable service %q: %v", name, err)
	} else {
		changed = true
	}
	if err := os.Remove(unit); err == nil {
		changed = true
	} else if !os.IsNotExist(err) {
		recorder.Warningf("ServiceRemoveFailed", "unable to remove unit file %q: %v", unit, err)
	}
	for _, command := range [][]string{{"daemon-reload"}, {"reset-failed"}} {
		if _, err := m.systemd.Run(ctx, command...); err != nil {
			recorder.Warningf("ServiceReloadFailed", "unable to run systemctl %s: %v", strings.Join(command, " "), err)
		}
	}
	return changed
}

// serviceCommand starts or stops the namespace unit, reporting a change
// only when the active state flipped.
func (m *Manager) serviceCommand(ctx context.Context, namespace, command string) bool {
	recorder := m.recorder.WithContext(ctx)

	name := ServiceName(namespace)
	before := m.serviceState(ctx, name)
	if _, err := m.systemd.Run(ctx, command, name); err != nil {
		recorder.Warningf("ServiceCommandFailed", "unable to %s service %q: %v", command, name, err)
		return false
	}
	after := m.serviceState(ctx, name)
	return before != after
}

func (m *Manager) serviceState(ctx context.Context, name string) string {
	state, _ := m.systemd.Run(ctx, "is-active", name)
	return state
}

func (m *Manager) systemdAvailable(ctx context.Context) bool {
	if _, err := m.systemd.Run(ctx, "list-units"); err != nil {
		klog.FromContext(ctx).V(2).Info("Unable to detect systemd", "err", err)
		return false
	}
	return true
}
