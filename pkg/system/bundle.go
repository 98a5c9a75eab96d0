package system

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/skupperproject/skupper-ansible/pkg/apis/skupper/v2alpha1"
	"github.com/skupperproject/skupper-ansible/pkg/resource"
)

// Artifact is a produced site bundle. Path is empty when the namespace has
// no site definition to name the bundle after.
type Artifact struct {
	Path string
	Data []byte
}

// Bundle produces a self-extracting install script for the namespace.
func (m *Manager) Bundle(ctx context.Context, namespace string) (Artifact, bool, error) {
	return m.produce(ctx, namespace, "bundle", "sh")
}

// Tarball produces a tarball install bundle for the namespace.
func (m *Manager) Tarball(ctx context.Context, namespace string) (Artifact, bool, error) {
	return m.produce(ctx, namespace, "tarball", "tar.gz")
}

func (m *Manager) produce(ctx context.Context, namespace, strategy, extension string) (Artifact, bool, error) {
	changed, err := m.setup(ctx, namespace, false, strategy)
	if err != nil {
		return Artifact{}, false, err
	}

	siteName, err := m.siteName(ctx, namespace)
	if err != nil {
		return Artifact{}, changed, err
	}
	if siteName == "" {
		m.recorder.WithContext(ctx).Warningf("SiteNotFound", "unable to identify a site on namespace %q", namespace)
		return Artifact{}, changed, nil
	}

	path := filepath.Join(m.env.BundlesDir(), fmt.Sprintf("skupper-install-%s.%s", siteName, extension))
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, changed, fmt.Errorf("unable to read bundle %q: %w", path, err)
	}
	return Artifact{Path: path, Data: data}, changed, nil
}

// siteName returns the name of the first Site among the namespace input
// resources, "" when the namespace defines none.
func (m *Manager) siteName(ctx context.Context, namespace string) (string, error) {
	objects, err := resource.LoadPath(ctx, m.env.ResourcesDir(namespace))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	for _, obj := range objects {
		if obj.GroupVersionKind() == v2alpha1.SiteGVK {
			return obj.GetName(), nil
		}
	}
	return "", nil
}
