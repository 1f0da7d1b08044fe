package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestProject(t *testing.T) {
	p := NewTestProject(t)

	p.WriteFile("src/app.app.src", "{application, app, []}.")
	assert.Equal(t, "{application, app, []}.", p.ReadFile("src/app.app.src"))

	dep := p.AddDep("foo-1.0.0")
	require.NoError(t, os.Symlink(dep, filepath.Join(p.Dir, "foo")))
	assert.Equal(t, dep, p.Readlink("foo"))

	assert.Equal(t, []string{".", "foo", "src", "src/app.app.src"}, p.Tree())
}

func TestSetEnv(t *testing.T) {
	t.Setenv("ERL_LIBS", "/leftover")

	SetEnv(t, map[string]string{"name": "myapp"})

	_, set := os.LookupEnv("ERL_LIBS")
	assert.False(t, set)
	assert.Equal(t, "myapp", os.Getenv("name"))
}
