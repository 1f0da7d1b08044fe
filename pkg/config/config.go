package config

import (
	"path/filepath"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/rebarconfig"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/reconcile"
)

// Layout holds the project-relative paths rebar3 uses
type Layout struct {
	BuildDir     string `koanf:"build_dir"`
	PluginsDir   string `koanf:"plugins_dir"`
	LibDir       string `koanf:"lib_dir"`
	RebarConfig  string `koanf:"rebar_config"`
	SrcDir       string `koanf:"src_dir"`
	AppSrcSuffix string `koanf:"app_src_suffix"`
}

// PluginTarget is where plugins are linked
func (l Layout) PluginTarget() string {
	return filepath.Join(l.BuildDir, l.PluginsDir)
}

// LibTarget is where libraries are linked
func (l Layout) LibTarget() string {
	return filepath.Join(l.BuildDir, l.LibDir)
}

// Sources describes how packaged dependencies are laid out
type Sources struct {
	NestedLibDir       string `koanf:"nested_lib_dir"`
	HexSourceSeparator string `koanf:"hex_source_separator"`
}

// Rebar names the config entries the bootstrap edits
type Rebar struct {
	CompilerOptsKey string `koanf:"compiler_opts_key"`
	DebugInfoMarker string `koanf:"debug_info_marker"`
	PluginsKey      string `koanf:"plugins_key"`
	PortPlugin      string `koanf:"port_plugin"`
}

// Defaults is the embedded configuration
type Defaults struct {
	Layout  Layout  `koanf:"layout"`
	Sources Sources `koanf:"sources"`
	Rebar   Rebar   `koanf:"rebar"`
	Link    Link    `koanf:"link"`
}

// Link tunes the symlink installer
type Link struct {
	Jobs int `koanf:"jobs"`
}

// RunConfig is everything one bootstrap run needs. It is built once by Load
// and passed by value.
type RunConfig struct {
	Version      string
	Name         string
	DebugInfo    bool
	CompilePorts bool
	// LibPaths come from ERL_LIBS, in order
	LibPaths []string
	// PluginPaths come from buildPlugins, in order
	PluginPaths []string
	// ErlangRoot is the Erlang/OTP installation rebar3 runs on
	ErlangRoot string
	Jobs       int
	Verbosity  int

	Layout  Layout
	Sources Sources
	Rebar   Rebar
}

// AppSrcPath is the .app.src of a single application project
func (c RunConfig) AppSrcPath() string {
	return rebarconfig.AppSrcPath(c.Layout.SrcDir, c.Name, c.Layout.AppSrcSuffix)
}

// ReconcileOptions returns the options for the path reconciler
func (c RunConfig) ReconcileOptions() reconcile.Options {
	return reconcile.Options{
		NestedLibDir:       c.Sources.NestedLibDir,
		HexSourceSeparator: c.Sources.HexSourceSeparator,
	}
}

// RewriterSettings returns the settings for the config rewriter
func (c RunConfig) RewriterSettings() rebarconfig.Settings {
	return rebarconfig.Settings{
		CompilerOptsKey: c.Rebar.CompilerOptsKey,
		DebugInfoMarker: c.Rebar.DebugInfoMarker,
		PluginsKey:      c.Rebar.PluginsKey,
		PortPlugin:      c.Rebar.PortPlugin,
	}
}
