package v2alpha1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	// Group is the API group served by the skupper controllers.
	Group = "skupper.io"
	// Version is the API version this collection targets.
	Version = "v2alpha1"
)

// GroupVersion is the group/version of the skupper resource types.
var GroupVersion = schema.GroupVersion{Group: Group, Version: Version}

var (
	SiteGVK        = GroupVersion.WithKind("Site")
	AccessGrantGVK = GroupVersion.WithKind("AccessGrant")
	AccessTokenGVK = GroupVersion.WithKind("AccessToken")
	LinkGVK        = GroupVersion.WithKind("Link")
)

// ConditionReady is set by the controllers once an object is usable.
const ConditionReady = "Ready"
