package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Package is the part of package.json the bundler cares about.
type Package struct {
	Name  string
	Types string // "types", falling back to "typings"; slash-separated, relative
}

// DetectPackage reads package.json in dir. A missing file yields a zero
// Package; an unreadable or malformed one is an error.
func DetectPackage(dir string) (Package, error) {
	path := filepath.Join(dir, "package.json")
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Package{}, nil
		}
		return Package{}, fmt.Errorf("read package.json: %w", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return Package{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return Package{
		Name:  strField(obj, "name"),
		Types: firstNonEmpty(strField(obj, "types"), strField(obj, "typings")),
	}, nil
}

func strField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
