package bootstrap

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/config"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/logging"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/rebarconfig"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/reconcile"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/symlink"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Bootstrapper runs the stages for one project directory
type Bootstrapper struct {
	cfg config.RunConfig
	dir string
	out io.Writer

	rewriter   *rebarconfig.Rewriter
	reconciler *reconcile.Reconciler
	installer  *symlink.Installer

	logger zerolog.Logger
}

// New creates a Bootstrapper for the project in dir. Progress is written
// to out.
func New(cfg config.RunConfig, fs afero.Fs, dir string, out io.Writer) (*Bootstrapper, error) {
	installer, err := symlink.NewInstaller(fs, out, cfg.Jobs)
	if err != nil {
		return nil, err
	}
	return &Bootstrapper{
		cfg:        cfg,
		dir:        dir,
		out:        out,
		rewriter:   rebarconfig.NewRewriter(fs, cfg.RewriterSettings()),
		reconciler: reconcile.New(fs, cfg.ReconcileOptions()),
		installer:  installer,
		logger:     logging.GetLogger("bootstrap"),
	}, nil
}

// Run executes every stage
func (b *Bootstrapper) Run(ctx context.Context) error {
	b.logger.Info().
		Str("name", b.cfg.Name).
		Str("version", b.cfg.Version).
		Str("erlang_root", b.cfg.ErlangRoot).
		Bool("debug_info", b.cfg.DebugInfo).
		Bool("compile_ports", b.cfg.CompilePorts).
		Msg("Starting bootstrap")

	if err := b.BootstrapConfigs(); err != nil {
		return err
	}
	if err := b.BootstrapPlugins(ctx); err != nil {
		return err
	}
	return b.BootstrapLibs(ctx)
}

// BootstrapConfigs updates the app version, then rebar.config
func (b *Bootstrapper) BootstrapConfigs() error {
	done := logging.LogOperationStart(b.logger, "configs")
	defer done()
	fmt.Fprintln(b.out, "Bootstrapping app and rebar configurations")

	if _, err := b.rewriter.UpdateAppVersion(b.path(b.cfg.AppSrcPath()), b.cfg.Version); err != nil {
		return err
	}

	rebarConfig := b.path(b.cfg.Layout.RebarConfig)
	if b.cfg.CompilePorts {
		if err := b.rewriter.AddPortCompiler(rebarConfig); err != nil {
			return err
		}
	}
	if b.cfg.DebugInfo {
		if _, err := b.rewriter.EnsureDebugInfo(rebarConfig); err != nil {
			return err
		}
	}
	return nil
}

// BootstrapPlugins links the build plugins
func (b *Bootstrapper) BootstrapPlugins(ctx context.Context) error {
	done := logging.LogOperationStart(b.logger, "plugins")
	defer done()
	fmt.Fprintln(b.out, "Bootstrapping plugins")

	units, err := b.reconciler.Plugins(b.cfg.PluginPaths)
	if err != nil {
		return err
	}
	return b.installer.Install(ctx, b.path(b.cfg.Layout.PluginTarget()), units)
}

// BootstrapLibs links the ERL_LIBS applications
func (b *Bootstrapper) BootstrapLibs(ctx context.Context) error {
	done := logging.LogOperationStart(b.logger, "libs")
	defer done()
	fmt.Fprintln(b.out, "Bootstrapping libs")

	units, err := b.reconciler.Libraries(b.cfg.LibPaths)
	if err != nil {
		return err
	}
	return b.installer.Install(ctx, b.path(b.cfg.Layout.LibTarget()), units)
}

func (b *Bootstrapper) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(b.dir, rel)
}
