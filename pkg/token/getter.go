package token

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/skupperproject/skupper-ansible/pkg/kube"
)

// clientGetter adapts the cluster client to the poll.Getter contract. Named
// fetches surface NotFound errors untouched, list fetches flatten to a
// slice.
type clientGetter struct {
	client *kube.Client
}

func (g *clientGetter) Get(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) ([]*unstructured.Unstructured, error) {
	if name != "" {
		obj, err := g.client.Get(ctx, gvk, namespace, name)
		if err != nil {
			return nil, err
		}
		return []*unstructured.Unstructured{obj}, nil
	}

	list, err := g.client.List(ctx, gvk, namespace)
	if err != nil {
		return nil, err
	}
	items := make([]*unstructured.Unstructured, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, &list.Items[i])
	}
	return items, nil
}
