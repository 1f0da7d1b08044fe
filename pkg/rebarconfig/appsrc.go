package rebarconfig

import (
	"path/filepath"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/terms"
	"github.com/spf13/afero"
)

// AppSrcPath is where a single application project keeps its resource file
func AppSrcPath(srcDir, name, suffix string) string {
	return filepath.Join(srcDir, name+suffix)
}

// UpdateAppVersion sets {vsn, Version} in the {application, Name, Props}
// term at path. A missing file is not an error and reports false.
func (r *Rewriter) UpdateAppVersion(path, version string) (bool, error) {
	exists, err := afero.Exists(r.fs, path)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFilesystem, "cannot stat %s", path)
	}
	if !exists {
		r.logger.Debug().Str("path", path).Msg("No app.src, skipping version update")
		return false, nil
	}

	doc, err := r.Load(path)
	if err != nil {
		return false, err
	}
	app, err := applicationTerm(doc)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrConfigParse, "unable to read config %s", path)
	}

	props := app[2].(terms.List)
	updated := &Document{entries: make([]entry, 0, len(props.Elems))}
	for _, p := range props.Elems {
		updated.entries = append(updated.entries, entry{term: p})
	}
	updated.Upsert("vsn", terms.String(version))

	out := &Document{entries: []entry{{
		term: terms.Tuple{app[0], app[1], terms.NewList(updated.Terms()...)},
	}}}
	if err := r.Save(path, out); err != nil {
		return false, err
	}
	r.logger.Info().Str("path", path).Str("version", version).Msg("Updated application version")
	return true, nil
}

func applicationTerm(doc *Document) (terms.Tuple, error) {
	if doc.Len() != 1 {
		return nil, errors.Newf(errors.ErrConfigParse,
			"expected a single application term, found %d terms", doc.Len())
	}
	app, ok := doc.entries[0].term.(terms.Tuple)
	if !ok || len(app) != 3 {
		return nil, errors.New(errors.ErrConfigParse, "expected {application, Name, Properties}")
	}
	if tag, _ := app[0].(terms.Atom); tag != "application" {
		return nil, errors.New(errors.ErrConfigParse, "expected {application, Name, Properties}")
	}
	if _, ok := app[1].(terms.Atom); !ok {
		return nil, errors.New(errors.ErrConfigParse, "application name is not an atom")
	}
	props, ok := app[2].(terms.List)
	if !ok || !props.IsProper() {
		return nil, errors.New(errors.ErrConfigParse, "application properties are not a proper list")
	}
	return app, nil
}
