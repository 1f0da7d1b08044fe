package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv clears every variable the loader reads, then sets vars
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for name := range knownEnv {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	for name, value := range vars {
		t.Setenv(name, value)
	}
}

func baseEnv(extra map[string]string) map[string]string {
	vars := map[string]string{
		EnvVersion:    "1.2.3",
		EnvName:       "myapp",
		EnvErlangRoot: "/opt/erlang",
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantDebug bool
		wantErr   bool
	}{
		{"no arguments", nil, false, false},
		{"debug info", []string{"debug-info"}, true, false},
		{"unknown flag", []string{"unknown-flag"}, false, true},
		{"debug info plus extra", []string{"debug-info", "extra"}, false, true},
		{"debug info twice", []string{"debug-info", "debug-info"}, false, true},
		{"dashed flag", []string{"--debug-info"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debug, err := ParseArgs(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
				assert.Equal(t, 120, errors.ExitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, debug)
		})
	}
}

func TestParseArgsListsUnknownTokens(t *testing.T) {
	_, err := ParseArgs([]string{"debug-info", "foo", "bar"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foo bar")
	assert.NotContains(t, err.Error(), "debug-info")
}

func TestLoadDefaults(t *testing.T) {
	d, err := LoadDefaults()
	require.NoError(t, err)

	assert.Equal(t, "_build/default/plugins", d.Layout.PluginTarget())
	assert.Equal(t, "_build/default/lib", d.Layout.LibTarget())
	assert.Equal(t, "rebar.config", d.Layout.RebarConfig)
	assert.Equal(t, "lib/erlang/lib", d.Sources.NestedLibDir)
	assert.Equal(t, "-hex-source-", d.Sources.HexSourceSeparator)
	assert.Equal(t, "debug_info", d.Rebar.DebugInfoMarker)
	assert.Equal(t, "pc", d.Rebar.PortPlugin)
	assert.Equal(t, 1, d.Link.Jobs)
}

func TestLoad(t *testing.T) {
	setEnv(t, baseEnv(map[string]string{
		EnvErlLibs:      "/deps/a::/deps/b:",
		EnvBuildPlugins: "/plugins/x  /plugins/y\n",
		EnvCompilePorts: "1",
		EnvBuildCores:   "3",
		EnvNixDebug:     "4",
	}))

	cfg, err := Load([]string{"debug-info"})
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "myapp", cfg.Name)
	assert.True(t, cfg.DebugInfo)
	assert.True(t, cfg.CompilePorts)
	assert.Equal(t, []string{"/deps/a", "/deps/b"}, cfg.LibPaths)
	assert.Equal(t, []string{"/plugins/x", "/plugins/y"}, cfg.PluginPaths)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, 4, cfg.Verbosity)
	assert.Equal(t, "/opt/erlang", cfg.ErlangRoot)
	assert.Equal(t, filepath.Join("src", "myapp.app.src"), cfg.AppSrcPath())
	assert.Equal(t, "erl_opts", cfg.RewriterSettings().CompilerOptsKey)
	assert.Equal(t, "-hex-source-", cfg.ReconcileOptions().HexSourceSeparator)
}

func TestLoadOptionalDefaults(t *testing.T) {
	setEnv(t, baseEnv(nil))

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.False(t, cfg.DebugInfo)
	assert.False(t, cfg.CompilePorts)
	assert.Empty(t, cfg.LibPaths)
	assert.Empty(t, cfg.PluginPaths)
	assert.Equal(t, 1, cfg.Jobs)
	assert.Equal(t, 0, cfg.Verbosity)
}

func TestLoadMissingRequired(t *testing.T) {
	for _, missing := range []string{EnvVersion, EnvName} {
		t.Run(missing, func(t *testing.T) {
			vars := baseEnv(nil)
			delete(vars, missing)
			setEnv(t, vars)

			_, err := Load(nil)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrEnvironment))
			assert.Equal(t, missing, errors.GetErrorDetails(err)["variable"])
			assert.Equal(t, 1, errors.ExitCode(err))
		})
	}
}

func TestLoadEmptyRequired(t *testing.T) {
	setEnv(t, baseEnv(map[string]string{EnvName: ""}))

	_, err := Load(nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEnvironment))
}

func TestLoadCompilePortsIsStrict(t *testing.T) {
	for _, value := range []string{"true", "0", "yes", " 1"} {
		t.Run(value, func(t *testing.T) {
			setEnv(t, baseEnv(map[string]string{EnvCompilePorts: value}))

			_, err := Load(nil)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrEnvironment))
		})
	}
}

func TestLoadBadArgsBeforeEnvironment(t *testing.T) {
	// Usage errors win even when the environment is incomplete
	setEnv(t, nil)

	_, err := Load([]string{"unknown-flag"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
}

func TestJobs(t *testing.T) {
	assert.Equal(t, 2, jobs("", 2))
	assert.Equal(t, 8, jobs("8", 1))
	assert.Equal(t, runtime.NumCPU(), jobs("0", 1))
	assert.Equal(t, 1, jobs("lots", 1))
	assert.Equal(t, 1, jobs("-3", 1))
}

func TestErlangRootFromPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on an executable shell script")
	}
	root := t.TempDir()
	bin := filepath.Join(root, "lib", "erlang", "bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "erl"), []byte("#!/bin/sh\n"), 0755))

	linkDir := filepath.Join(root, "bin")
	require.NoError(t, os.Mkdir(linkDir, 0755))
	require.NoError(t, os.Symlink(filepath.Join(bin, "erl"), filepath.Join(linkDir, "erl")))
	t.Setenv("PATH", linkDir)

	want, err := filepath.EvalSymlinks(filepath.Join(root, "lib", "erlang"))
	require.NoError(t, err)
	assert.Equal(t, want, erlangRoot(""))
	assert.Equal(t, "/explicit", erlangRoot("/explicit"))
}

func TestNoticesStayQuietByDefault(t *testing.T) {
	t.Cleanup(func() { logging.SetupLoggerTo(io.Discard, 0) })
	cfg := RunConfig{Version: "R16B", ErlangRoot: "/opt/erlang"}

	var quiet bytes.Buffer
	logging.SetupLoggerTo(&quiet, 0)
	cfg.Notices()
	assert.Empty(t, quiet.String())

	var verbose bytes.Buffer
	logging.SetupLoggerTo(&verbose, 1)
	cfg.Notices()
	assert.Contains(t, verbose.String(), "R16B")
	assert.Contains(t, verbose.String(), "not semver")
}
