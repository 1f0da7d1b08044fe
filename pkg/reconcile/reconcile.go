package reconcile

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"zombiezen.com/go/nix"
)

// Delimiters for the two path lists, see SplitPaths
const (
	LibPathDelimiters    = ":"
	PluginPathDelimiters = " \n"
)

// InstallUnit is a dependency found on disk and the name rebar3 knows it by
type InstallUnit struct {
	Source string
	Name   string
	// StorePath is the nix store object holding Source, when there is one
	StorePath nix.StorePath
}

// Options describes where dependencies are found inside a plugin path
type Options struct {
	// NestedLibDir is the library directory inside an installed plugin,
	// relative to the plugin path
	NestedLibDir string
	// HexSourceSeparator marks the package name in an unpacked hex source
	HexSourceSeparator string
}

// DefaultOptions matches the layout produced by nixpkgs' beam builders
func DefaultOptions() Options {
	return Options{
		NestedLibDir:       filepath.Join("lib", "erlang", "lib"),
		HexSourceSeparator: "-hex-source-",
	}
}

// Reconciler discovers install units on a filesystem
type Reconciler struct {
	fs     afero.Fs
	opts   Options
	logger zerolog.Logger
}

// New creates a Reconciler
func New(fs afero.Fs, opts Options) *Reconciler {
	return &Reconciler{
		fs:     fs,
		opts:   opts,
		logger: logging.GetLogger("reconcile"),
	}
}

// Libraries scans every directory in dirs, in order
func (r *Reconciler) Libraries(dirs []string) ([]InstallUnit, error) {
	var units []InstallUnit
	for _, dir := range dirs {
		found, err := r.ScanLibDir(dir)
		if err != nil {
			return nil, err
		}
		units = append(units, found...)
	}
	return units, nil
}

// Plugins resolves plugin paths. An installed plugin contributes the
// applications under its nested lib directory; any other path is taken to
// be a single unpacked hex source. A path inside the nix store must name a
// valid store object, and a hex source at the top of one is named after the
// object rather than the hashed directory.
func (r *Reconciler) Plugins(paths []string) ([]InstallUnit, error) {
	var units []InstallUnit
	for _, path := range paths {
		sp, sub, err := storeObject(path)
		if err != nil {
			return nil, err
		}

		nested := filepath.Join(path, r.opts.NestedLibDir)
		// Like filelib:is_dir/1, any stat failure means "not installed"
		isDir, err := afero.IsDir(r.fs, nested)
		if err != nil {
			r.logger.Debug().Err(err).Str("path", nested).Msg("No nested lib directory")
		}
		if isDir {
			found, err := r.ScanLibDir(nested)
			if err != nil {
				return nil, err
			}
			units = append(units, found...)
			continue
		}

		base := path
		if sp != "" && sub == "" {
			base = sp.Name()
		}
		name, err := HexSourceName(base, r.opts.HexSourceSeparator)
		if err != nil {
			return nil, err
		}
		units = append(units, r.unit(path, name))
	}
	return units, nil
}

// ScanLibDir makes an install unit of every entry in dir
func (r *Reconciler) ScanLibDir(dir string) ([]InstallUnit, error) {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "cannot list %s", dir).
			WithDetail("path", dir)
	}

	units := make([]InstallUnit, 0, len(entries))
	for _, entry := range entries {
		name, err := BareName(entry.Name())
		if err != nil {
			return nil, err
		}
		units = append(units, r.unit(filepath.Join(dir, entry.Name()), name))
	}
	r.logger.Debug().Str("dir", dir).Int("units", len(units)).Msg("Scanned library directory")
	return units, nil
}

func (r *Reconciler) unit(source, name string) InstallUnit {
	u := InstallUnit{Source: source, Name: name}
	sp, _, err := storeObject(source)
	if err != nil {
		r.logger.Debug().Err(err).Str("path", source).Msg("Not a store object")
		return u
	}
	if sp != "" {
		u.StorePath = sp
		r.logger.Trace().
			Str("name", name).
			Str("store_name", sp.Name()).
			Str("digest", sp.Digest()).
			Msg("Dependency comes from the nix store")
	}
	return u
}

// storeObject splits a path inside the nix store into the store object and
// the path below it. Paths outside the store return an empty StorePath; a
// path inside the store that does not name a valid object is a Pattern
// error.
func storeObject(path string) (nix.StorePath, string, error) {
	dir := string(nix.DefaultStoreDirectory) + "/"
	path = filepath.Clean(path)
	if !strings.HasPrefix(path, dir) {
		return "", "", nil
	}
	base, sub, _ := strings.Cut(strings.TrimPrefix(path, dir), "/")
	sp, err := nix.ParseStorePath(dir + base)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrPattern, "%s is not a valid nix store path", path).
			WithDetail("path", path)
	}
	return sp, sub, nil
}
