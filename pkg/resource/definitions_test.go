package resource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const multiDoc = `---
apiVersion: skupper.io/v2alpha1
kind: Site
metadata:
  name: west
spec:
  linkAccess: default
---
# a comment only document
---
just a scalar
---
apiVersion: skupper.io/v2alpha1
kind: Listener
metadata:
  name: backend
spec:
  port: 8080
`

func TestParse(t *testing.T) {
	objects, err := Parse(multiDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, but %d", len(objects))
	}
	if objects[0].GetKind() != "Site" || objects[0].GetName() != "west" {
		t.Errorf("unexpected first object: %v", objects[0])
	}
	if objects[1].GetKind() != "Listener" || objects[1].GetName() != "backend" {
		t.Errorf("unexpected second object: %v", objects[1])
	}
	port, _, _ := unstructured.NestedFloat64(objects[1].Object, "spec", "port")
	if port != 8080 {
		t.Errorf("expected port 8080, but %v", port)
	}
}

func TestLoadPathFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(file, []byte(multiDoc), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	objects, err := LoadPath(context.Background(), file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objects) != 2 {
		t.Errorf("expected 2 objects, but %d", len(objects))
	}
}

func TestLoadPathDirectory(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	tooDeep := filepath.Join(dir, "a", "b", "c", "d")
	for _, d := range []string{nested, tooDeep} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	writeSite := func(path, name string) {
		content := "apiVersion: skupper.io/v2alpha1\nkind: Site\nmetadata:\n  name: " + name + "\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	writeSite(filepath.Join(dir, "01-west.yaml"), "west")
	writeSite(filepath.Join(dir, "02-east.yml"), "east")
	writeSite(filepath.Join(nested, "north.yaml"), "north")
	writeSite(filepath.Join(tooDeep, "ignored.yaml"), "ignored")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("not yaml"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	objects, err := LoadPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		names = append(names, obj.GetName())
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 objects, but %v", names)
	}
	if names[0] != "west" || names[1] != "east" || names[2] != "north" {
		t.Errorf("unexpected load order: %v", names)
	}
}

func TestLoadPathMissing(t *testing.T) {
	_, err := LoadPath(context.Background(), "/no/such/path")
	if err == nil {
		t.Error("expected an error")
	}
}

func TestLoadPathURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(multiDoc))
	}))
	defer server.Close()

	objects, err := LoadPath(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objects) != 2 {
		t.Errorf("expected 2 objects, but %d", len(objects))
	}
}

func TestLoadPathURLNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := LoadPath(context.Background(), server.URL+"/missing.yaml")
	if err == nil {
		t.Error("expected an error")
	}
}
