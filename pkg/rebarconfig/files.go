package rebarconfig

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/logging"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/terms"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Settings names the keys and atoms the rewriter injects
type Settings struct {
	CompilerOptsKey string
	DebugInfoMarker string
	PluginsKey      string
	PortPlugin      string
}

// DefaultSettings matches rebar3's own names
func DefaultSettings() Settings {
	return Settings{
		CompilerOptsKey: "erl_opts",
		DebugInfoMarker: "debug_info",
		PluginsKey:      "plugins",
		PortPlugin:      "pc",
	}
}

// Rewriter performs read-modify-write cycles on configuration files
type Rewriter struct {
	fs       afero.Fs
	settings Settings
	logger   zerolog.Logger
}

// NewRewriter creates a rewriter working on fs
func NewRewriter(fs afero.Fs, settings Settings) *Rewriter {
	return &Rewriter{
		fs:       fs,
		settings: settings,
		logger:   logging.GetLogger("rebarconfig"),
	}
}

// Load reads and parses a configuration file. A missing or malformed file
// is a ConfigParse error.
func (r *Rewriter) Load(path string) (*Document, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "unable to read config %s", path).
			WithDetail("path", path)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "unable to read config %s", path).
			WithDetail("path", path)
	}
	r.logger.Debug().Str("path", path).Int("terms", doc.Len()).Msg("Loaded config")
	return doc, nil
}

// Save writes doc back to path, replacing the file in one rename
func (r *Rewriter) Save(path string, doc *Document) error {
	return r.writeFile(path, []byte(doc.String()))
}

// EnsureDebugInfo adds the debug info marker to the compiler options of the
// config at path. Nothing is written when the marker is already there.
func (r *Rewriter) EnsureDebugInfo(path string) (bool, error) {
	doc, err := r.Load(path)
	if err != nil {
		return false, err
	}
	changed, err := doc.EnsureInList(r.settings.CompilerOptsKey, terms.Atom(r.settings.DebugInfoMarker))
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrConfigParse, "unable to read config %s", path)
	}
	if !changed {
		r.logger.Debug().Str("path", path).Msg("debug info already enabled")
		return false, nil
	}
	return true, r.Save(path, doc)
}

// AddPortCompiler prepends the port compiler plugin to the plugins of the
// config at path. Running it twice lists the plugin twice.
func (r *Rewriter) AddPortCompiler(path string) error {
	doc, err := r.Load(path)
	if err != nil {
		return err
	}
	if err := doc.PrependToList(r.settings.PluginsKey, terms.Atom(r.settings.PortPlugin)); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "unable to read config %s", path)
	}
	return r.Save(path, doc)
}

func (r *Rewriter) writeFile(path string, data []byte) error {
	path, err := r.resolveLinks(path)
	if err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := r.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(r.fs, filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "cannot write %s", path)
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = r.fs.Chmod(tmpName, mode)
	}
	if werr == nil {
		werr = r.fs.Rename(tmpName, path)
	}
	if werr != nil {
		_ = r.fs.Remove(tmpName)
		return errors.Wrapf(werr, errors.ErrFilesystem, "cannot write %s", path)
	}

	r.logger.Info().Str("path", path).Msg("Rewrote config")
	return nil
}

// maxLinkDepth bounds symlink chains, matching the usual ELOOP limit
const maxLinkDepth = 40

// resolveLinks follows symlinks at path so a linked config is rewritten in
// place instead of being replaced by a regular file.
func (r *Rewriter) resolveLinks(path string) (string, error) {
	lstater, ok := r.fs.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, ok := r.fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	for depth := 0; depth < maxLinkDepth; depth++ {
		info, lstatCalled, err := lstater.LstatIfPossible(path)
		if err != nil || !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}
		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrFilesystem, "cannot resolve %s", path).
				WithDetail("path", path)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		r.logger.Debug().Str("link", path).Str("target", target).Msg("Writing through symlink")
		path = target
	}
	return "", errors.Newf(errors.ErrFilesystem, "too many levels of symbolic links at %s", path).
		WithDetail("path", path)
}
