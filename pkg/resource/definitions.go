package resource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// Directories are walked up to three levels deep when loading definitions.
const maxLoadDepth = 3

// Parse splits a multi-document YAML string into declarative objects.
// Documents that are not mappings are dropped.
func Parse(definitions string) ([]*unstructured.Unstructured, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(strings.NewReader(definitions)))

	var objects []*unstructured.Unstructured
	for {
		doc, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		var raw interface{}
		if err := yaml.Unmarshal(doc, &raw); err != nil {
			return nil, fmt.Errorf("unable to decode document: %w", err)
		}
		fields, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		objects = append(objects, &unstructured.Unstructured{Object: fields})
	}
	return objects, nil
}

// LoadPath reads declarative objects from a file, a directory tree
// (.yaml/.yml files, lexical order) or an http(s) URL.
func LoadPath(ctx context.Context, path string) ([]*unstructured.Unstructured, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return fetchURL(ctx, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %q: %w", path, err)
	}
	if !info.IsDir() {
		return parseFile(path)
	}

	var objects []*unstructured.Unstructured
	err = filepath.WalkDir(path, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if pathDepth(path, current) > maxLoadDepth {
				return fs.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
		default:
			return nil
		}
		parsed, err := parseFile(current)
		if err != nil {
			return err
		}
		objects = append(objects, parsed...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

func parseFile(path string) ([]*unstructured.Unstructured, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %q: %w", path, err)
	}
	objects, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse %q: %w", path, err)
	}
	return objects, nil
}

func pathDepth(root, current string) int {
	rel, err := filepath.Rel(root, current)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func fetchURL(ctx context.Context, url string) ([]*unstructured.Unstructured, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %q: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch %q: status %d", url, response.StatusCode)
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %q: %w", url, err)
	}
	return Parse(string(data))
}
