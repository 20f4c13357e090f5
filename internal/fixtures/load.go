package fixtures

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kuitang/hrm-e2e/internal/errs"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Load reads users and employees fixtures from dir. Each collection may be
// stored as JSON or YAML (users.json, users.yaml, ...); the first existing
// file in that order wins.
func Load(dir string) (*Set, error) {
	set := &Set{}
	if err := loadCollection(dir, "users", &set.Users); err != nil {
		return nil, err
	}
	if err := loadCollection(dir, "employees", &set.Employees); err != nil {
		return nil, err
	}
	if err := set.validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadFS is Load over an fs.FS, for embedded fixtures.
func LoadFS(fsys fs.FS) (*Set, error) {
	set := &Set{}
	if err := loadCollectionFS(fsys, "users", &set.Users); err != nil {
		return nil, err
	}
	if err := loadCollectionFS(fsys, "employees", &set.Employees); err != nil {
		return nil, err
	}
	if err := set.validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func loadCollection[V any](dir, name string, out *map[string]V) error {
	return loadCollectionFS(os.DirFS(dir), name, out)
}

func loadCollectionFS[V any](fsys fs.FS, name string, out *map[string]V) error {
	for _, ext := range extensions {
		file := name + ext
		data, err := fs.ReadFile(fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if err := decode(file, data, out); err != nil {
			return errs.Wrap(errs.InvalidArgument, fmt.Sprintf("failed to parse %s", file), err)
		}
		return nil
	}
	return errs.New(errs.NotFound, fmt.Sprintf("no %s fixture file (tried %s.json, %s.yaml, %s.yml)", name, name, name, name))
}

func decode[V any](file string, data []byte, out *map[string]V) error {
	switch filepath.Ext(file) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(out)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(out)
	}
}
