package token

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/skupperproject/skupper-ansible/pkg/platform"
)

// StaticLinkResolver serves pre-materialized link documents written under
// the namespace runtime state by the local controller. Non-cluster
// platforms resolve tokens from these files instead of polling a control
// plane.
type StaticLinkResolver struct {
	env *platform.Env
}

func NewStaticLinkResolver(env *platform.Env) *StaticLinkResolver {
	return &StaticLinkResolver{env: env}
}

// Resolve returns the first link document matching name and host in lexical
// order, or "" when none has been written yet. An empty name or host
// matches any link.
func (r *StaticLinkResolver) Resolve(namespace, name, host string) (string, error) {
	if name == "" {
		name = "*"
	}
	if host == "" {
		host = "*"
	}
	pattern := filepath.Join(r.env.LinksDir(namespace), fmt.Sprintf("link-%s-%s.yaml", name, host))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("unable to search links %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		return "", fmt.Errorf("unable to read link %q: %w", matches[0], err)
	}
	return string(data), nil
}
