package main

import (
	"context"
	"fmt"
	"io"

	"github.com/arthur-debert/rebar3-nix-bootstrap/internal/version"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/bootstrap"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/config"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command for the project in dir
func NewRootCmd(dir string) *cobra.Command {
	return &cobra.Command{
		Use:   "rebar3-nix-bootstrap [debug-info]",
		Short: "Prepare a rebar3 project for an offline nix build",
		Long: `rebar3-nix-bootstrap links the dependencies provided by nix into the
project's _build directory so that rebar3 treats them as installed, and
updates rebar.config and the application version to match the build.

It reads version, name, ERL_LIBS, buildPlugins and compilePorts from the
environment. Passing debug-info adds debug_info to erl_opts.`,
		// Every token is an argument; only "debug-info" is valid
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args: func(cmd *cobra.Command, args []string) error {
			_, err := config.ParseArgs(args)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args)
			if err != nil {
				return err
			}
			logging.SetupLoggerTo(cmd.ErrOrStderr(), cfg.Verbosity)
			log.Debug().Str("build", version.String()).Str("dir", dir).Strs("args", args).Msg("Command started")
			cfg.Notices()

			b, err := bootstrap.New(cfg, afero.NewOsFs(), dir, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return b.Run(cmd.Context())
		},
	}
}

// run executes the command and returns the process exit status
func run(args []string, dir string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(dir)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return errors.ExitCode(err)
}
