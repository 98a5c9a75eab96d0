package v2alpha1

import (
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Conditions extracts status.conditions from an unstructured skupper object.
// Entries that do not look like conditions are skipped.
func Conditions(obj *unstructured.Unstructured) []metav1.Condition {
	raw, found, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if err != nil || !found {
		return nil
	}

	conditions := make([]metav1.Condition, 0, len(raw))
	for _, entry := range raw {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		condition := metav1.Condition{}
		if conditionType, ok := fields["type"].(string); ok {
			condition.Type = conditionType
		}
		if status, ok := fields["status"].(string); ok {
			condition.Status = metav1.ConditionStatus(status)
		}
		if reason, ok := fields["reason"].(string); ok {
			condition.Reason = reason
		}
		if message, ok := fields["message"].(string); ok {
			condition.Message = message
		}
		conditions = append(conditions, condition)
	}
	return conditions
}

// IsReady reports whether the object's reconciler marked it Ready.
func IsReady(obj *unstructured.Unstructured) bool {
	return meta.IsStatusConditionTrue(Conditions(obj), ConditionReady)
}

// IsGrantRedeemable reports whether an AccessGrant can still hand out
// tokens: it is Ready and status.redeemed has not reached
// spec.redemptionsAllowed.
func IsGrantRedeemable(grant *unstructured.Unstructured) bool {
	if !IsReady(grant) {
		return false
	}
	return nestedInt(grant.Object, "status", "redeemed") < nestedInt(grant.Object, "spec", "redemptionsAllowed")
}

// NewAccessGrant builds an AccessGrant manifest. The target namespace is
// stamped by the store on apply, matching how user-provided manifests are
// handled.
func NewAccessGrant(name string, redemptionsAllowed int, expirationWindow string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": GroupVersion.String(),
		"kind":       AccessGrantGVK.Kind,
		"metadata": map[string]interface{}{
			"name": name,
		},
		"spec": map[string]interface{}{
			"redemptionsAllowed": int64(redemptionsAllowed),
			"expirationWindow":   expirationWindow,
		},
	}}
}

// NewAccessToken builds the AccessToken that redeems grant, carrying the
// code, url and ca the controller published on the grant status.
func NewAccessToken(grant *unstructured.Unstructured) *unstructured.Unstructured {
	code, _, _ := unstructured.NestedString(grant.Object, "status", "code")
	url, _, _ := unstructured.NestedString(grant.Object, "status", "url")
	ca, _, _ := unstructured.NestedString(grant.Object, "status", "ca")
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": GroupVersion.String(),
		"kind":       AccessTokenGVK.Kind,
		"metadata": map[string]interface{}{
			"name": "token-" + grant.GetName(),
		},
		"spec": map[string]interface{}{
			"ca":   ca,
			"code": code,
			"url":  url,
		},
	}}
}

// nestedInt reads an integer field tolerating both API-decoded (int64) and
// JSON-decoded (float64) representations.
func nestedInt(obj map[string]interface{}, fields ...string) int64 {
	value, found, err := unstructured.NestedFieldNoCopy(obj, fields...)
	if !found || err != nil {
		return 0
	}
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
