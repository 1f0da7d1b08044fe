package symlink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/logging"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/reconcile"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Installer links install units into a target directory.
// Each link replaces whatever was at its path before.
type Installer struct {
	fs     afero.Fs
	linker afero.Linker
	jobs   int

	mu  sync.Mutex
	out io.Writer

	logger zerolog.Logger
}

// NewInstaller creates an installer. Progress lines go to out; jobs bounds
// how many links are made at once and is at least 1.
func NewInstaller(fs afero.Fs, out io.Writer, jobs int) (*Installer, error) {
	linker, ok := fs.(afero.Linker)
	if !ok {
		return nil, errors.Newf(errors.ErrFilesystem, "filesystem %s cannot create symlinks", fs.Name())
	}
	if jobs < 1 {
		jobs = 1
	}
	return &Installer{
		fs:     fs,
		linker: linker,
		jobs:   jobs,
		out:    out,
		logger: logging.GetLogger("symlink"),
	}, nil
}

// Install links every unit as targetDir/<name>. When names repeat, the
// first unit wins. The first failure stops the run; links made before it
// stay in place.
func (i *Installer) Install(ctx context.Context, targetDir string, units []reconcile.InstallUnit) error {
	units = i.dedupe(units)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.jobs)
	for _, u := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return i.Link(u.Source, filepath.Join(targetDir, u.Name))
		})
	}
	return g.Wait()
}

// Link makes target a symlink to source, creating target's parent
// directories as needed.
func (i *Installer) Link(source, target string) error {
	if err := i.fs.Remove(target); err != nil && !os.IsNotExist(err) {
		i.logger.Debug().Err(err).Str("path", target).Msg("Could not remove existing target")
	}

	if err := i.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "cannot create directory for %s", target).
			WithDetail("path", target)
	}

	i.mu.Lock()
	fmt.Fprintf(i.out, "Making symlink from %s to %s\n", source, target)
	i.mu.Unlock()

	if err := i.linker.SymlinkIfPossible(source, target); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "cannot link %s to %s", target, source).
			WithDetail("source", source).
			WithDetail("target", target)
	}
	i.logger.Debug().Str("source", source).Str("target", target).Msg("Created symlink")
	return nil
}

// dedupe keeps the first unit for each name, so concurrent links never
// race on one path. Earlier ERL_LIBS entries take precedence, as they do on
// the Erlang code path.
func (i *Installer) dedupe(units []reconcile.InstallUnit) []reconcile.InstallUnit {
	first := make(map[string]int, len(units))
	out := make([]reconcile.InstallUnit, 0, len(units))
	for idx, u := range units {
		prev, ok := first[u.Name]
		if !ok {
			first[u.Name] = idx
			out = append(out, u)
			continue
		}
		kept := units[prev]
		ev := i.logger.Warn().
			Str("name", u.Name).
			Str("kept", kept.Source).
			Str("dropped", u.Source)
		if kept.StorePath != "" {
			ev = ev.Str("kept_store_name", kept.StorePath.Name()).Str("kept_digest", kept.StorePath.Digest())
		}
		if u.StorePath != "" {
			ev = ev.Str("dropped_store_name", u.StorePath.Name()).Str("dropped_digest", u.StorePath.Digest())
		}
		ev.Msg("Two dependencies share a name")
	}
	return out
}
