package resource

import (
	"context"
	"fmt"

	"github.com/openshift/library-go/pkg/operator/events"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/klog/v2"

	"github.com/skupperproject/skupper-ansible/pkg/kube"
)

type kubeStore struct {
	client   *kube.Client
	recorder events.Recorder
}

// NewKubeStore returns a store writing through the cluster client.
func NewKubeStore(client *kube.Client, recorder events.Recorder) Store {
	return &kubeStore{
		client:   client,
		recorder: recorder,
	}
}

func (s *kubeStore) Apply(ctx context.Context, namespace string, objects []*unstructured.Unstructured, overwrite bool) (bool, error) {
	logger := klog.FromContext(ctx)
	recorder := s.recorder.WithContext(ctx)

	changed := false
	for _, required := range objects {
		required = required.DeepCopy()
		if err := reconcileNamespace(required, namespace); err != nil {
			return changed, err
		}

		_, err := s.client.Create(ctx, namespace, required)
		if err == nil {
			recorder.Eventf("ResourceCreated", "created %s %q in namespace %q", required.GetKind(), required.GetName(), required.GetNamespace())
			changed = true
			continue
		}
		if !apierrors.IsAlreadyExists(err) && !apierrors.IsConflict(err) {
			return changed, fmt.Errorf("unable to create %s %q: %w", required.GetKind(), required.GetName(), err)
		}
		if !overwrite {
			logger.V(4).Info("Resource exists, skipping", "kind", required.GetKind(), "name", required.GetName())
			continue
		}
		if _, err := s.client.Patch(ctx, namespace, required); err != nil {
			return changed, fmt.Errorf("unable to patch %s %q: %w", required.GetKind(), required.GetName(), err)
		}
		recorder.Eventf("ResourcePatched", "patched %s %q in namespace %q", required.GetKind(), required.GetName(), required.GetNamespace())
		changed = true
	}
	return changed, nil
}

func (s *kubeStore) Remove(ctx context.Context, namespace string, objects []*unstructured.Unstructured) (bool, error) {
	logger := klog.FromContext(ctx)
	recorder := s.recorder.WithContext(ctx)

	changed := false
	for _, obj := range objects {
		name := obj.GetName()
		if name == "" {
			continue
		}
		err := s.client.Delete(ctx, obj.GroupVersionKind(), namespace, name)
		if apierrors.IsNotFound(err) {
			logger.V(4).Info("Resource already gone", "kind", obj.GetKind(), "name", name)
			continue
		}
		if err != nil {
			return changed, fmt.Errorf("unable to delete %s %q: %w", obj.GetKind(), name, err)
		}
		recorder.Eventf("ResourceDeleted", "deleted %s %q from namespace %q", obj.GetKind(), name, namespace)
		changed = true
	}
	return changed, nil
}
