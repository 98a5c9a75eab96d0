package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skupperproject/skupper-ansible/pkg/platform"
)

func TestResolve(t *testing.T) {
	env := &platform.Env{UID: 1000, GID: 1000, Home: t.TempDir()}
	linksDir := env.LinksDir("west")
	if err := os.MkdirAll(linksDir, 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	links := map[string]string{
		"link-site-a-10.0.0.1.yaml": "kind: Link\nname: site-a\n",
		"link-site-b-10.0.0.2.yaml": "kind: Link\nname: site-b\n",
	}
	for name, content := range links {
		if err := os.WriteFile(filepath.Join(linksDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	resolver := NewStaticLinkResolver(env)

	cases := []struct {
		name     string
		linkName string
		host     string
		expected string
	}{
		{
			name:     "first link in lexical order",
			expected: links["link-site-a-10.0.0.1.yaml"],
		},
		{
			name:     "by name",
			linkName: "site-b",
			expected: links["link-site-b-10.0.0.2.yaml"],
		},
		{
			name:     "by host",
			host:     "10.0.0.2",
			expected: links["link-site-b-10.0.0.2.yaml"],
		},
		{
			name:     "name and host must both match",
			linkName: "site-a",
			host:     "10.0.0.2",
		},
		{
			name:     "unknown name",
			linkName: "site-c",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			content, err := resolver.Resolve("west", c.linkName, c.host)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if content != c.expected {
				t.Errorf("expected %q, but %q", c.expected, content)
			}
		})
	}
}

func TestResolveWithoutLinks(t *testing.T) {
	env := &platform.Env{UID: 1000, GID: 1000, Home: t.TempDir()}
	resolver := NewStaticLinkResolver(env)

	content, err := resolver.Resolve("west", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "" {
		t.Errorf("expected no link, but %q", content)
	}
}
