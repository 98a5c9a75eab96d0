package v2alpha1

import (
	"fmt"
	"net"
	"strings"

	apimachineryvalidation "k8s.io/apimachinery/pkg/api/validation"
	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
)

// ValidateName checks that a resource name follows the RFC 1123 label rules
// the API server enforces on metadata.name. Empty names are allowed, callers
// generate one when needed.
func ValidateName(name string) error {
	if name == "" {
		return nil
	}
	if errs := apimachineryvalidation.NameIsDNSLabel(name, false); len(errs) > 0 {
		return fmt.Errorf("invalid name %q: %s", name, strings.Join(errs, ", "))
	}
	return nil
}

// ValidateNamespace checks a namespace name. Empty means the default
// namespace.
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return nil
	}
	if errs := apimachineryvalidation.ValidateNamespaceName(namespace, false); len(errs) > 0 {
		return fmt.Errorf("invalid namespace %q: %s", namespace, strings.Join(errs, ", "))
	}
	return nil
}

// ValidateHost accepts an IP address (v4 or v6) or a hostname.
func ValidateHost(host string) error {
	if host == "" {
		return nil
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if errs := utilvalidation.IsDNS1123Subdomain(host); len(errs) > 0 {
		return fmt.Errorf("invalid host %q: %s", host, strings.Join(errs, ", "))
	}
	return nil
}
