package system

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skupperproject/skupper-ansible/pkg/platform"
)

const siteDefinition = `apiVersion: skupper.io/v2alpha1
kind: Site
metadata:
  name: west-site
`

func writeSiteResources(t *testing.T, env *platform.Env, namespace string) {
	t.Helper()
	dir := env.ResourcesDir(namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "site.yaml"), []byte(siteDefinition), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func writeBundleFile(t *testing.T, env *platform.Env, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(env.BundlesDir(), 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(env.BundlesDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestBundle(t *testing.T) {
	cases := []struct {
		name         string
		strategy     string
		bundleFile   string
		expectedArgs []string
	}{
		{
			name:         "self extracting bundle",
			strategy:     "bundle",
			bundleFile:   "skupper-install-west-site.sh",
			expectedArgs: []string{"/app/bootstrap", "-n", "west", "-b", "bundle"},
		},
		{
			name:         "tarball",
			strategy:     "tarball",
			bundleFile:   "skupper-install-west-site.tar.gz",
			expectedArgs: []string{"/app/bootstrap", "-n", "west", "-b", "tarball"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			api := &fakeContainerAPI{}
			systemd := &fakeSystemd{available: true}
			manager, env := newTestManager(t, platform.PlatformPodman, platform.EnginePodman, api, systemd)
			writeSiteResources(t, env, "west")
			path := writeBundleFile(t, env, c.bundleFile, "#!/bin/sh\ninstall\n")

			var artifact Artifact
			var changed bool
			var err error
			if c.strategy == "bundle" {
				artifact, changed, err = manager.Bundle(context.Background(), "west")
			} else {
				artifact, changed, err = manager.Tarball(context.Background(), "west")
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !changed {
				t.Errorf("expected a change")
			}
			if artifact.Path != path {
				t.Errorf("expected path %q, but %q", path, artifact.Path)
			}
			if string(artifact.Data) != "#!/bin/sh\ninstall\n" {
				t.Errorf("unexpected bundle content %q", string(artifact.Data))
			}
			if len(api.created) != 1 {
				t.Fatalf("expected one container, but %d", len(api.created))
			}
			if !equalStrings(api.created[0].config.Cmd, c.expectedArgs) {
				t.Errorf("expected cmd %v, but %v", c.expectedArgs, api.created[0].config.Cmd)
			}
			if len(systemd.commands) != 0 {
				t.Errorf("expected no service install for bundles, but %v", systemd.commands)
			}
		})
	}
}

func TestBundleWithoutSite(t *testing.T) {
	api := &fakeContainerAPI{}
	manager, _ := newTestManager(t, platform.PlatformPodman, platform.EnginePodman, api, &fakeSystemd{})

	artifact, changed, err := manager.Bundle(context.Background(), "west")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Errorf("expected a change")
	}
	if artifact.Path != "" || artifact.Data != nil {
		t.Errorf("expected an empty artifact, but %+v", artifact)
	}
}

func TestBundleMissingFile(t *testing.T) {
	api := &fakeContainerAPI{}
	manager, env := newTestManager(t, platform.PlatformPodman, platform.EnginePodman, api, &fakeSystemd{})
	writeSiteResources(t, env, "west")

	_, changed, err := manager.Bundle(context.Background(), "west")
	if err == nil || !strings.HasPrefix(err.Error(), "unable to read bundle") {
		t.Errorf("expected a read error, but %v", err)
	}
	if !changed {
		t.Errorf("expected the bootstrap run to be reported")
	}
}
