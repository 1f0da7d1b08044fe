package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// TestProject is a project directory plus a directory for dependencies,
// both removed when the test ends.
type TestProject struct {
	Dir  string
	Deps string

	t *testing.T
}

// NewTestProject creates an empty project
func NewTestProject(t *testing.T) *TestProject {
	t.Helper()
	return &TestProject{Dir: t.TempDir(), Deps: t.TempDir(), t: t}
}

// WriteFile writes a file relative to the project directory
func (p *TestProject) WriteFile(rel, content string) string {
	p.t.Helper()
	path := filepath.Join(p.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		p.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		p.t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

// ReadFile reads a file relative to the project directory
func (p *TestProject) ReadFile(rel string) string {
	p.t.Helper()
	data, err := os.ReadFile(filepath.Join(p.Dir, rel))
	if err != nil {
		p.t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

// AddDep creates a dependency directory, relative to Deps, and returns its
// absolute path
func (p *TestProject) AddDep(rel string) string {
	p.t.Helper()
	path := filepath.Join(p.Deps, rel)
	if err := os.MkdirAll(path, 0755); err != nil {
		p.t.Fatalf("create dependency %s: %v", rel, err)
	}
	return path
}

// Readlink returns the target of a link relative to the project directory
func (p *TestProject) Readlink(rel string) string {
	p.t.Helper()
	target, err := os.Readlink(filepath.Join(p.Dir, rel))
	if err != nil {
		p.t.Fatalf("readlink %s: %v", rel, err)
	}
	return target
}

// Tree lists every path under the project directory, sorted
func (p *TestProject) Tree() []string {
	p.t.Helper()
	var paths []string
	err := filepath.Walk(p.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(p.Dir, path)
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		p.t.Fatalf("walk project: %v", err)
	}
	sort.Strings(paths)
	return paths
}
