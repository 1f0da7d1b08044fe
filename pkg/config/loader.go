package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	bserrors "github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/logging"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/reconcile"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Environment variables read by the bootstrap
const (
	EnvVersion      = "version"
	EnvName         = "name"
	EnvErlLibs      = "ERL_LIBS"
	EnvBuildPlugins = "buildPlugins"
	EnvCompilePorts = "compilePorts"
	EnvBuildCores   = "NIX_BUILD_CORES"
	EnvNixDebug     = "NIX_DEBUG"
	EnvErlangRoot   = "ERLANG_ROOT_DIR"
)

// DebugInfoArg is the only command-line argument accepted
const DebugInfoArg = "debug-info"

var knownEnv = map[string]bool{
	EnvVersion:      true,
	EnvName:         true,
	EnvErlLibs:      true,
	EnvBuildPlugins: true,
	EnvCompilePorts: true,
	EnvBuildCores:   true,
	EnvNixDebug:     true,
	EnvErlangRoot:   true,
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// ParseArgs accepts no arguments or exactly "debug-info"
func ParseArgs(args []string) (debugInfo bool, err error) {
	switch {
	case len(args) == 0:
		return false, nil
	case len(args) == 1 && args[0] == DebugInfoArg:
		return true, nil
	}

	unknown := make([]string, 0, len(args))
	for _, a := range args {
		if a != DebugInfoArg {
			unknown = append(unknown, a)
		}
	}
	if len(unknown) == 0 {
		unknown = args
	}
	return false, bserrors.Newf(bserrors.ErrUsage,
		"Unexpected command line arguments passed in: %s", strings.Join(unknown, " ")).
		WithDetail("arguments", unknown)
}

// LoadDefaults reads the embedded layout configuration
func LoadDefaults() (Defaults, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return Defaults{}, fmt.Errorf("failed to load defaults: %w", err)
	}
	var d Defaults
	if err := k.Unmarshal("", &d); err != nil {
		return Defaults{}, fmt.Errorf("failed to unmarshal defaults: %w", err)
	}
	return d, nil
}

// Load builds the RunConfig from the command line and the environment
func Load(args []string) (RunConfig, error) {
	debugInfo, err := ParseArgs(args)
	if err != nil {
		return RunConfig{}, err
	}

	defaults, err := LoadDefaults()
	if err != nil {
		return RunConfig{}, bserrors.Wrap(err, bserrors.ErrInternal, "embedded configuration is broken")
	}

	k := koanf.New(".")
	err = k.Load(env.Provider("", ".", func(s string) string {
		if !knownEnv[s] {
			return ""
		}
		return "env." + s
	}), nil)
	if err != nil {
		return RunConfig{}, bserrors.Wrap(err, bserrors.ErrEnvironment, "failed to load env vars")
	}

	cfg := RunConfig{
		DebugInfo:   debugInfo,
		LibPaths:    reconcile.SplitPaths(k.String("env."+EnvErlLibs), reconcile.LibPathDelimiters),
		PluginPaths: reconcile.SplitPaths(k.String("env."+EnvBuildPlugins), reconcile.PluginPathDelimiters),
		Verbosity:   logging.VerbosityFromNixDebug(k.String("env." + EnvNixDebug)),
		Layout:      defaults.Layout,
		Sources:     defaults.Sources,
		Rebar:       defaults.Rebar,
	}

	if cfg.Version, err = required(k, EnvVersion); err != nil {
		return RunConfig{}, err
	}
	if cfg.Name, err = required(k, EnvName); err != nil {
		return RunConfig{}, err
	}
	if cfg.CompilePorts, err = decodeFlag(EnvCompilePorts, k.String("env."+EnvCompilePorts)); err != nil {
		return RunConfig{}, err
	}
	cfg.Jobs = jobs(k.String("env."+EnvBuildCores), defaults.Link.Jobs)
	cfg.ErlangRoot = erlangRoot(k.String("env." + EnvErlangRoot))

	return cfg, nil
}

// Notices logs inputs that are accepted but unusual. Erlang versions are
// free-form, so these stay below the default verbosity.
func (c RunConfig) Notices() {
	logger := logging.GetLogger("config")
	if _, err := semver.NewVersion(c.Version); err != nil {
		logger.Info().Str("version", c.Version).Msg("Version is not semver; writing it as-is")
	}
	if c.ErlangRoot == "" {
		logger.Debug().Msg("Erlang root not found")
	}
}

func required(k *koanf.Koanf, name string) (string, error) {
	value := k.String("env." + name)
	if value == "" {
		return "", bserrors.Newf(bserrors.ErrEnvironment,
			"required environment variable %q is not set", name).
			WithDetail("variable", name)
	}
	return value, nil
}

// decodeFlag accepts only "1" and "" (or unset)
func decodeFlag(name, value string) (bool, error) {
	switch value {
	case "1":
		return true, nil
	case "":
		return false, nil
	}
	return false, bserrors.Newf(bserrors.ErrEnvironment,
		"environment variable %q must be \"1\" or empty, got %q", name, value).
		WithDetail("variable", name)
}

// jobs reads NIX_BUILD_CORES, where 0 means every core
func jobs(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	switch {
	case err != nil || n < 0:
		logging.GetLogger("config").Warn().Str(EnvBuildCores, value).Msg("Ignoring invalid core count")
		return fallback
	case n == 0:
		return runtime.NumCPU()
	}
	return n
}

// erlangRoot mirrors code:root_dir(): the directory above bin/erl
func erlangRoot(value string) string {
	if value != "" {
		return value
	}
	erl, err := exec.LookPath("erl")
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(erl); err == nil {
		erl = resolved
	}
	return filepath.Dir(filepath.Dir(erl))
}
