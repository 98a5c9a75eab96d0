package resource

import (
	"testing"

	"github.com/skupperproject/skupper-ansible/pkg/kube"
	"github.com/skupperproject/skupper-ansible/pkg/platform"
	testinghelpers "github.com/skupperproject/skupper-ansible/pkg/testing"
)

func TestReconcileNamespace(t *testing.T) {
	cases := []struct {
		name        string
		declared    string
		target      string
		expected    string
		expectedErr string
	}{
		{name: "absent takes target", declared: "", target: "west", expected: "west"},
		{name: "absent with empty target", declared: "", target: "", expected: "default"},
		{name: "default placeholder takes target", declared: "default", target: "west", expected: "west"},
		{name: "declared matches target", declared: "west", target: "west", expected: "west"},
		{
			name:        "declared differs from target",
			declared:    "west",
			target:      "east",
			expectedErr: `namespace cannot be set to "east" as the resource is defined with namespace "west"`,
		},
		{
			name:        "declared differs from empty target",
			declared:    "west",
			target:      "",
			expectedErr: `namespace cannot be set to "default" as the resource is defined with namespace "west"`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			obj := newSiteManifest(c.declared, "site1")
			err := reconcileNamespace(obj, c.target)
			testinghelpers.AssertError(t, err, c.expectedErr)
			if c.expectedErr != "" {
				return
			}
			if obj.GetNamespace() != c.expected {
				t.Errorf("expected namespace %q, but %q", c.expected, obj.GetNamespace())
			}
		})
	}
}

func TestNewStore(t *testing.T) {
	client := kube.NewClientFor(testinghelpers.NewFakeDynamicClient(), testinghelpers.NewRESTMapper())
	env := &platform.Env{UID: 1000, Home: "/home/user"}
	recorder := newTestRecorder()

	if _, err := NewStore(platform.PlatformKubernetes, nil, env, recorder); err == nil {
		t.Error("expected an error without a cluster client")
	}
	if _, err := NewStore(platform.PlatformPodman, nil, nil, recorder); err == nil {
		t.Error("expected an error without an environment")
	}

	store, err := NewStore(platform.PlatformKubernetes, client, nil, recorder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*kubeStore); !ok {
		t.Errorf("expected a kube store, but %T", store)
	}

	store, err = NewStore(platform.PlatformSystemd, nil, env, recorder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*fileStore); !ok {
		t.Errorf("expected a file store, but %T", store)
	}
}
