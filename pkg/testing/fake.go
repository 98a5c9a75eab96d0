package testing

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	fakedynamic "k8s.io/client-go/dynamic/fake"

	"github.com/skupperproject/skupper-ansible/pkg/apis/skupper/v2alpha1"
)

// NewFakeDynamicClient returns a dynamic fake primed with the skupper list
// kinds, so list calls work even when no object of a kind was seeded.
func NewFakeDynamicClient(objects ...runtime.Object) *fakedynamic.FakeDynamicClient {
	return fakedynamic.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{
			v2alpha1.GroupVersion.WithResource("sites"):        "SiteList",
			v2alpha1.GroupVersion.WithResource("accessgrants"): "AccessGrantList",
			v2alpha1.GroupVersion.WithResource("accesstokens"): "AccessTokenList",
			v2alpha1.GroupVersion.WithResource("links"):        "LinkList",
			corev1.SchemeGroupVersion.WithResource("secrets"):  "SecretList",
		}, objects...)
}

// NewRESTMapper maps the skupper kinds plus the core kinds the store touches,
// the way the API server discovery would.
func NewRESTMapper() meta.RESTMapper {
	mapper := meta.NewDefaultRESTMapper([]schema.GroupVersion{v2alpha1.GroupVersion, corev1.SchemeGroupVersion})
	mapper.Add(v2alpha1.SiteGVK, meta.RESTScopeNamespace)
	mapper.Add(v2alpha1.AccessGrantGVK, meta.RESTScopeNamespace)
	mapper.Add(v2alpha1.AccessTokenGVK, meta.RESTScopeNamespace)
	mapper.Add(v2alpha1.LinkGVK, meta.RESTScopeNamespace)
	mapper.Add(corev1.SchemeGroupVersion.WithKind("Secret"), meta.RESTScopeNamespace)
	return mapper
}
