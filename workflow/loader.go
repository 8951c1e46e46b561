package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Loader loads workflow definitions by name.
type Loader interface {
	Load(name string) (*Workflow, error)
}

// FileLoader loads workflows from YAML or JSON files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches the given directories for
// workflow files.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load searches for a workflow file by name across configured directories.
// It tries {name}.yaml, {name}.yml and {name}.json in each directory.
func (l *FileLoader) Load(name string) (*Workflow, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml", ".json"} {
			path := filepath.Join(dir, name+ext)
			if wf, err := LoadFile(path); err == nil {
				return wf, nil
			}
		}
	}
	return nil, fmt.Errorf("workflow: %q not found in %v", name, l.dirs)
}

// LoadFile loads a workflow from an explicit file path. JSON files (the
// flow-builder export format) and YAML files are both accepted.
func LoadFile(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wf Workflow
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("workflow: parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("workflow: parsing %s: %w", path, err)
		}
	}

	if wf.Name == "" {
		wf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &wf, nil
}

// Parse decodes a workflow from raw JSON, the shape the HTTP API receives.
func Parse(data []byte) (*Workflow, error) {
	var wf Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("workflow: %w", err)
	}
	return &wf, nil
}
