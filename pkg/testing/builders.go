package testing

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/skupperproject/skupper-ansible/pkg/apis/skupper/v2alpha1"
)

func NewUnstructured(apiVersion, kind, namespace, name string) *unstructured.Unstructured {
	u := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": apiVersion,
			"kind":       kind,
			"metadata": map[string]interface{}{
				"name": name,
			},
		},
	}
	if namespace != "" {
		u.SetNamespace(namespace)
	}
	return u
}

func NewUnstructuredWithContent(
	apiVersion, kind, namespace, name string, content map[string]interface{}) *unstructured.Unstructured {
	object := NewUnstructured(apiVersion, kind, namespace, name)
	for key, val := range content {
		object.Object[key] = val
	}
	return object
}

// NewSite returns a Site fixture, optionally carrying a Ready condition.
func NewSite(namespace, name string, ready bool) *unstructured.Unstructured {
	site := NewUnstructured(v2alpha1.GroupVersion.String(), v2alpha1.SiteGVK.Kind, namespace, name)
	if ready {
		setReadyCondition(site)
	}
	return site
}

// NewAccessGrant returns an AccessGrant fixture with the given redemption
// counters. Ready grants carry the status code/url/ca a token is minted
// from, derived from the grant name.
func NewAccessGrant(namespace, name string, ready bool, redemptionsAllowed, redeemed int64) *unstructured.Unstructured {
	grant := NewUnstructuredWithContent(
		v2alpha1.GroupVersion.String(), v2alpha1.AccessGrantGVK.Kind, namespace, name,
		map[string]interface{}{
			"spec": map[string]interface{}{
				"redemptionsAllowed": redemptionsAllowed,
				"expirationWindow":   "15m",
			},
			"status": map[string]interface{}{
				"redeemed": redeemed,
			},
		})
	if ready {
		setReadyCondition(grant)
		status := grant.Object["status"].(map[string]interface{})
		status["code"] = name + "-code"
		status["url"] = "https://" + name + ".grant.local:443"
		status["ca"] = name + "-ca"
	}
	return grant
}

// NewSecret returns a minimal Secret manifest, the one non-skupper kind the
// filesystem store accepts.
func NewSecret(namespace, name string) *unstructured.Unstructured {
	return NewUnstructuredWithContent("v1", "Secret", namespace, name, map[string]interface{}{
		"type": "Opaque",
		"data": map[string]interface{}{},
	})
}

func setReadyCondition(obj *unstructured.Unstructured) {
	conditions := []interface{}{
		map[string]interface{}{
			"type":   v2alpha1.ConditionReady,
			"status": "True",
			"reason": "Ready",
		},
	}
	status, ok := obj.Object["status"].(map[string]interface{})
	if !ok {
		status = map[string]interface{}{}
		obj.Object["status"] = status
	}
	status["conditions"] = conditions
}
