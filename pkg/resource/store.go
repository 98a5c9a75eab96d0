package resource

import (
	"context"
	"fmt"

	"github.com/openshift/library-go/pkg/operator/events"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/skupperproject/skupper-ansible/pkg/apis/skupper/v2alpha1"
	"github.com/skupperproject/skupper-ansible/pkg/kube"
	"github.com/skupperproject/skupper-ansible/pkg/platform"
)

// Store applies and removes declarative objects for one target namespace.
// Apply creates missing objects; with overwrite it also merges changed ones
// into what is already stored. Both calls report whether anything changed.
// A batch stops at the first backend fault, changes made so far stay.
type Store interface {
	Apply(ctx context.Context, namespace string, objects []*unstructured.Unstructured, overwrite bool) (bool, error)
	Remove(ctx context.Context, namespace string, objects []*unstructured.Unstructured) (bool, error)
}

// NewStore dispatches on the platform: kubernetes platforms write through
// the cluster client, all others into the namespace filesystem layout.
func NewStore(p platform.Platform, client *kube.Client, env *platform.Env, recorder events.Recorder) (Store, error) {
	if p.IsKube() {
		if client == nil {
			return nil, fmt.Errorf("no cluster client for platform %q", p)
		}
		return NewKubeStore(client, recorder), nil
	}
	if env == nil {
		return nil, fmt.Errorf("no environment for platform %q", p)
	}
	return NewFileStore(env, recorder), nil
}

// reconcileNamespace stamps the effective target namespace on obj: an absent
// namespace or the literal default placeholder takes the target, anything
// else must already match it.
func reconcileNamespace(obj *unstructured.Unstructured, namespace string) error {
	target := namespace
	if target == "" {
		target = metav1.NamespaceDefault
	}
	switch declared := obj.GetNamespace(); declared {
	case "", metav1.NamespaceDefault:
		obj.SetNamespace(target)
	case target:
	default:
		return fmt.Errorf("namespace cannot be set to %q as the resource is defined with namespace %q", target, declared)
	}
	return nil
}

// allowed reports whether an object may be persisted for a non-kube
// namespace: anything in the skupper group, plus Secrets carried for link
// credentials and certificates.
func allowed(obj *unstructured.Unstructured) bool {
	if obj.GroupVersionKind().Group == v2alpha1.Group {
		return true
	}
	return obj.GetKind() == "Secret"
}
