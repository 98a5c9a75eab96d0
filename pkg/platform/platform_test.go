package platform

import (
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		expected Platform
		isKube   bool
		invalid  bool
	}{
		{name: "empty defaults to kubernetes", value: "", expected: PlatformKubernetes, isKube: true},
		{name: "kubernetes", value: "kubernetes", expected: PlatformKubernetes, isKube: true},
		{name: "podman", value: "podman", expected: PlatformPodman},
		{name: "docker", value: "docker", expected: PlatformDocker},
		{name: "systemd", value: "systemd", expected: PlatformSystemd},
		{name: "unknown", value: "nomad", invalid: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := Parse(c.value)
			if c.invalid {
				if err == nil {
					t.Errorf("expected %q to be rejected", c.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p != c.expected {
				t.Errorf("expected %s, but %s", c.expected, p)
			}
			if p.IsKube() != c.isKube {
				t.Errorf("expected IsKube %t, but %t", c.isKube, p.IsKube())
			}
		})
	}
}

func TestParseEngine(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		expected Engine
		invalid  bool
	}{
		{name: "empty defaults to podman", value: "", expected: EnginePodman},
		{name: "podman", value: "podman", expected: EnginePodman},
		{name: "docker", value: "docker", expected: EngineDocker},
		{name: "unknown", value: "runc", invalid: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			engine, err := ParseEngine(c.value)
			if c.invalid {
				if err == nil {
					t.Errorf("expected %q to be rejected", c.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if engine != c.expected {
				t.Errorf("expected %s, but %s", c.expected, engine)
			}
		})
	}
}
