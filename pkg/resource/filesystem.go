package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/openshift/library-go/pkg/operator/events"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"

	"github.com/skupperproject/skupper-ansible/pkg/platform"
)

type fileStore struct {
	env      *platform.Env
	recorder events.Recorder
}

// NewFileStore returns a store placing objects into the namespace input
// directory, where the bootstrap picks them up.
func NewFileStore(env *platform.Env, recorder events.Recorder) Store {
	return &fileStore{
		env:      env,
		recorder: recorder,
	}
}

func (s *fileStore) Apply(ctx context.Context, namespace string, objects []*unstructured.Unstructured, overwrite bool) (bool, error) {
	logger := klog.FromContext(ctx)
	recorder := s.recorder.WithContext(ctx)

	home := s.env.ResourcesDir(namespace)
	if err := os.MkdirAll(home, 0o755); err != nil {
		return false, fmt.Errorf("unable to create resources directory %q: %w", home, err)
	}

	changed := false
	for _, required := range objects {
		if required.GetName() == "" || !allowed(required) {
			logger.V(4).Info("Resource not kept for a non-kube namespace", "kind", required.GetKind(), "name", required.GetName())
			continue
		}
		required = required.DeepCopy()
		if err := reconcileNamespace(required, namespace); err != nil {
			return changed, err
		}

		filename := filepath.Join(home, objectFileName(required))
		existing, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if !overwrite {
				logger.V(4).Info("Resource file exists, skipping", "file", filename)
				continue
			}
			merged, err := mergeDefinitions(existing, required)
			if err != nil {
				return changed, fmt.Errorf("unable to merge %q: %w", filename, err)
			}
			if err := os.WriteFile(filename, merged, 0o644); err != nil {
				return changed, fmt.Errorf("unable to write %q: %w", filename, err)
			}
			recorder.Eventf("ResourcePatched", "merged %s %q into %s", required.GetKind(), required.GetName(), filename)
			changed = true
		case os.IsNotExist(err):
			data, err := yaml.Marshal(required.Object)
			if err != nil {
				return changed, fmt.Errorf("unable to encode %s %q: %w", required.GetKind(), required.GetName(), err)
			}
			if err := os.WriteFile(filename, data, 0o644); err != nil {
				return changed, fmt.Errorf("unable to write %q: %w", filename, err)
			}
			recorder.Eventf("ResourceCreated", "wrote %s %q to %s", required.GetKind(), required.GetName(), filename)
			changed = true
		default:
			return changed, fmt.Errorf("unable to read %q: %w", filename, err)
		}
	}
	return changed, nil
}

func (s *fileStore) Remove(ctx context.Context, namespace string, objects []*unstructured.Unstructured) (bool, error) {
	recorder := s.recorder.WithContext(ctx)

	home := s.env.ResourcesDir(namespace)
	if _, err := os.Stat(home); os.IsNotExist(err) {
		return false, nil
	}

	changed := false
	for _, obj := range objects {
		if obj.GetName() == "" {
			continue
		}
		filename := filepath.Join(home, objectFileName(obj))
		err := os.Remove(filename)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return changed, fmt.Errorf("unable to remove %q: %w", filename, err)
		}
		recorder.Eventf("ResourceDeleted", "removed %s", filename)
		changed = true
	}
	return changed, nil
}

func objectFileName(obj *unstructured.Unstructured) string {
	return fmt.Sprintf("%s-%s.yaml", obj.GetKind(), obj.GetName())
}

// mergeDefinitions merges the required object into the stored definition
// with an RFC 7386 merge patch, so fields the required object does not
// mention survive the overwrite.
func mergeDefinitions(existing []byte, required *unstructured.Unstructured) ([]byte, error) {
	existingJSON, err := yaml.YAMLToJSON(existing)
	if err != nil {
		return nil, err
	}
	requiredJSON, err := required.MarshalJSON()
	if err != nil {
		return nil, err
	}
	mergedJSON, err := jsonpatch.MergePatch(existingJSON, requiredJSON)
	if err != nil {
		return nil, err
	}
	return yaml.JSONToYAML(mergedJSON)
}
