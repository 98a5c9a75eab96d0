package kube

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// Client performs the declarative-object operations the collection needs
// against a cluster. Kinds are mapped to resources through a RESTMapper so
// custom resources resolve the same way kubectl resolves them. It is not a
// general purpose client.
type Client struct {
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
}

// NewClient builds a client from a kubeconfig path and an optional context.
// An empty path follows the default loading rules (KUBECONFIG, then
// ~/.kube/config).
func NewClient(kubeconfig, kubeContext string) (*Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		rules.ExplicitPath = kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}
	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("unable to load kubeconfig: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, err
	}
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(config)
	if err != nil {
		return nil, err
	}
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient))

	return NewClientFor(dynamicClient, mapper), nil
}

// NewClientFor wires an existing dynamic client and mapper.
func NewClientFor(dynamicClient dynamic.Interface, mapper meta.RESTMapper) *Client {
	return &Client{
		dynamicClient: dynamicClient,
		mapper:        mapper,
	}
}

func (c *Client) resourceFor(gvk schema.GroupVersionKind, namespace string) (dynamic.ResourceInterface, error) {
	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return nil, fmt.Errorf("unable to map %s: %w", gvk.String(), err)
	}
	if mapping.Scope.Name() != meta.RESTScopeNameNamespace {
		return c.dynamicClient.Resource(mapping.Resource), nil
	}
	if namespace == "" {
		namespace = metav1.NamespaceDefault
	}
	return c.dynamicClient.Resource(mapping.Resource).Namespace(namespace), nil
}

// Get fetches one object by name. API errors are returned unwrapped so
// callers can classify them.
func (c *Client) Get(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) (*unstructured.Unstructured, error) {
	resource, err := c.resourceFor(gvk, namespace)
	if err != nil {
		return nil, err
	}
	return resource.Get(ctx, name, metav1.GetOptions{})
}

// List fetches all objects of a kind in a namespace.
func (c *Client) List(ctx context.Context, gvk schema.GroupVersionKind, namespace string) (*unstructured.UnstructuredList, error) {
	resource, err := c.resourceFor(gvk, namespace)
	if err != nil {
		return nil, err
	}
	return resource.List(ctx, metav1.ListOptions{})
}

// Create submits a new object.
func (c *Client) Create(ctx context.Context, namespace string, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	resource, err := c.resourceFor(obj.GroupVersionKind(), namespace)
	if err != nil {
		return nil, err
	}
	return resource.Create(ctx, obj, metav1.CreateOptions{})
}

// Patch merges the required object into the stored one with a merge patch,
// leaving fields the required object does not mention untouched.
func (c *Client) Patch(ctx context.Context, namespace string, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	resource, err := c.resourceFor(obj.GroupVersionKind(), namespace)
	if err != nil {
		return nil, err
	}
	data, err := obj.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return resource.Patch(ctx, obj.GetName(), types.MergePatchType, data, metav1.PatchOptions{})
}

// Delete removes one object by name.
func (c *Client) Delete(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) error {
	resource, err := c.resourceFor(gvk, namespace)
	if err != nil {
		return err
	}
	return resource.Delete(ctx, name, metav1.DeleteOptions{})
}
