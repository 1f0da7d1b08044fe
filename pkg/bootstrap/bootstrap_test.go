package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/config"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.RunConfig {
	t.Helper()
	d, err := config.LoadDefaults()
	require.NoError(t, err)
	return config.RunConfig{
		Version: "1.2.3",
		Name:    "myapp",
		Jobs:    1,
		Layout:  d.Layout,
		Sources: d.Sources,
		Rebar:   d.Rebar,
	}
}

func newBootstrapper(t *testing.T, cfg config.RunConfig, dir string) (*Bootstrapper, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	b, err := New(cfg, afero.NewOsFs(), dir, &out)
	require.NoError(t, err)
	return b, &out
}

func TestRunUpdatesAppVersionOnly(t *testing.T) {
	p := testutil.NewTestProject(t)
	rebarConfig := "{deps, []}.\n"
	p.WriteFile("rebar.config", rebarConfig)
	p.WriteFile("src/myapp.app.src",
		`{application, myapp, [{vsn, "0.0.1"}, {applications, [kernel, stdlib]}]}.`)
	before := p.Tree()

	b, out := newBootstrapper(t, testConfig(t), p.Dir)
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t,
		`{application,myapp,[{vsn,"1.2.3"},{applications,[kernel,stdlib]}]}.`+"\n",
		p.ReadFile("src/myapp.app.src"))
	assert.Equal(t, rebarConfig, p.ReadFile("rebar.config"))
	assert.Equal(t, before, p.Tree())
	assert.Equal(t,
		"Bootstrapping app and rebar configurations\nBootstrapping plugins\nBootstrapping libs\n",
		out.String())
}

func TestRunWithoutAppSrc(t *testing.T) {
	p := testutil.NewTestProject(t)

	b, _ := newBootstrapper(t, testConfig(t), p.Dir)
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, []string{"."}, p.Tree())
}

func TestRunLinksLibraries(t *testing.T) {
	p := testutil.NewTestProject(t)
	foo := p.AddDep("foo-1.0.3")

	cfg := testConfig(t)
	cfg.LibPaths = []string{p.Deps}
	b, out := newBootstrapper(t, cfg, p.Dir)
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, foo, p.Readlink("_build/default/lib/foo"))
	link := filepath.Join(p.Dir, "_build", "default", "lib", "foo")
	assert.Contains(t, out.String(), "Making symlink from "+foo+" to "+link)
}

func TestRunLinksHexSourcePlugin(t *testing.T) {
	p := testutil.NewTestProject(t)
	plugin := p.AddDep("plugin-hex-source-bar")

	cfg := testConfig(t)
	cfg.PluginPaths = []string{plugin}
	b, _ := newBootstrapper(t, cfg, p.Dir)
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, plugin, p.Readlink("_build/default/plugins/bar"))
}

func TestRunLinksInstalledPlugin(t *testing.T) {
	p := testutil.NewTestProject(t)
	pc := p.AddDep("erlang-pc/lib/erlang/lib/pc-1.14.0")

	cfg := testConfig(t)
	cfg.PluginPaths = []string{filepath.Join(p.Deps, "erlang-pc")}
	b, _ := newBootstrapper(t, cfg, p.Dir)
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, pc, p.Readlink("_build/default/plugins/pc"))
}

func TestRunDebugInfoWithoutConfig(t *testing.T) {
	p := testutil.NewTestProject(t)

	cfg := testConfig(t)
	cfg.DebugInfo = true
	b, _ := newBootstrapper(t, cfg, p.Dir)
	err := b.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	assert.Equal(t, 1, errors.ExitCode(err))
}

func TestRunRewritesRebarConfig(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.WriteFile("rebar.config", "{erl_opts, [warn_missing_spec]}.\n{plugins, [rebar3_hex]}.\n")

	cfg := testConfig(t)
	cfg.DebugInfo = true
	cfg.CompilePorts = true
	b, _ := newBootstrapper(t, cfg, p.Dir)
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t,
		"{erl_opts,[debug_info,warn_missing_spec]}.\n{plugins,[pc,rebar3_hex]}.\n",
		p.ReadFile("rebar.config"))
}

func TestRunTwice(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.AddDep("foo-1.0.3")
	p.AddDep("bar-2.0.0")
	p.WriteFile("rebar.config", "{erl_opts, []}.\n")

	cfg := testConfig(t)
	cfg.LibPaths = []string{p.Deps}
	cfg.DebugInfo = true
	for i := 0; i < 2; i++ {
		b, _ := newBootstrapper(t, cfg, p.Dir)
		require.NoError(t, b.Run(context.Background()))
	}

	entries, err := os.ReadDir(filepath.Join(p.Dir, "_build", "default", "lib"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"bar", "foo"}, names)
	assert.Equal(t, "{erl_opts,[debug_info]}.\n", p.ReadFile("rebar.config"))
}

func TestRunStopsAtFirstFailingStage(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.AddDep("foo-1.0.3")

	cfg := testConfig(t)
	cfg.PluginPaths = []string{filepath.Join(t.TempDir(), "not-a-hex-source")}
	cfg.LibPaths = []string{p.Deps}
	b, _ := newBootstrapper(t, cfg, p.Dir)
	err := b.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPattern))
	assert.Equal(t, []string{"."}, p.Tree(), "libs stage must not run")
}

func TestRunMissingLibDirectory(t *testing.T) {
	p := testutil.NewTestProject(t)
	cfg := testConfig(t)
	cfg.LibPaths = []string{filepath.Join(p.Deps, "gone")}
	b, _ := newBootstrapper(t, cfg, p.Dir)

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFilesystem))
}

func TestRunEarlierLibPathWins(t *testing.T) {
	p := testutil.NewTestProject(t)
	first := p.AddDep("one/foo-2.0.0")
	p.AddDep("two/foo-1.0.0")

	cfg := testConfig(t)
	cfg.LibPaths = []string{filepath.Join(p.Deps, "one"), filepath.Join(p.Deps, "two")}
	b, _ := newBootstrapper(t, cfg, p.Dir)
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, first, p.Readlink("_build/default/lib/foo"))
}
