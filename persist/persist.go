// Package persist reads and writes a needlepoint Project to its on-disk
// form: a single needlepoint.yaml file in the project directory.
package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kamilmandziuk/needlepoint/graph"
)

// FileName is the name of the persisted project file within a project
// directory.
const FileName = "needlepoint.yaml"

// Save writes p's manifest, nodes, and edges to needlepoint.yaml inside
// p.ProjectPath. ProjectPath itself is never serialized.
func Save(p *graph.Project) error {
	if p.ProjectPath == "" {
		return fmt.Errorf("persist: project has no ProjectPath to save to")
	}
	if err := os.MkdirAll(p.ProjectPath, 0o755); err != nil {
		return fmt.Errorf("persist: creating project directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("persist: marshaling project: %w", err)
	}

	path := filepath.Join(p.ProjectPath, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("persist: writing %s: %w", path, err)
	}
	return nil
}

// Load reads needlepoint.yaml from dirPath and returns the decoded
// Project. ProjectPath on the returned Project is always set to dirPath,
// regardless of what (if anything) was stored in the file.
func Load(dirPath string) (*graph.Project, error) {
	path := filepath.Join(dirPath, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persist: reading %s: %w", path, err)
	}

	var p graph.Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("persist: parsing %s: %w", path, err)
	}
	p.ProjectPath = dirPath
	return &p, nil
}

// Exists reports whether dirPath already contains a needlepoint.yaml.
func Exists(dirPath string) bool {
	_, err := os.Stat(filepath.Join(dirPath, FileName))
	return err == nil
}
