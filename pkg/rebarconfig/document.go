package rebarconfig

import (
	"strings"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/errors"
	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/terms"
)

type entry struct {
	term terms.Term
	// source is empty once the entry has been rewritten
	source string
}

// Document is an ordered sequence of top-level configuration terms
type Document struct {
	entries []entry
}

// Parse reads a document from source text
func Parse(src string) (*Document, error) {
	forms, err := terms.Parse(src)
	if err != nil {
		return nil, err
	}
	doc := &Document{entries: make([]entry, 0, len(forms))}
	for _, f := range forms {
		doc.entries = append(doc.entries, entry{term: f.Term, source: f.Source})
	}
	return doc, nil
}

// Len returns the number of top-level terms
func (d *Document) Len() int {
	return len(d.entries)
}

// Terms returns the top-level terms in order
func (d *Document) Terms() []terms.Term {
	out := make([]terms.Term, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.term
	}
	return out
}

func (d *Document) index(key string) int {
	for i, e := range d.entries {
		if k, ok := terms.Key(e.term); ok && string(k) == key {
			return i
		}
	}
	return -1
}

// Lookup returns the value of the first {key, Value} entry
func (d *Document) Lookup(key string) (terms.Term, bool) {
	i := d.index(key)
	if i < 0 {
		return nil, false
	}
	tuple := d.entries[i].term.(terms.Tuple)
	if len(tuple) != 2 {
		return nil, false
	}
	return tuple[1], true
}

// Upsert replaces the first entry keyed by key with {key, value}, or appends
// it when there is none.
func (d *Document) Upsert(key string, value terms.Term) {
	e := entry{term: terms.Tuple{terms.Atom(key), value}}
	if i := d.index(key); i >= 0 {
		d.entries[i] = e
		return
	}
	d.entries = append(d.entries, e)
}

// listValue returns the list under key. A missing key is an empty list.
func (d *Document) listValue(key string) (terms.List, error) {
	i := d.index(key)
	if i < 0 {
		return terms.List{}, nil
	}
	tuple := d.entries[i].term.(terms.Tuple)
	if len(tuple) != 2 {
		return terms.List{}, errors.Newf(errors.ErrConfigParse,
			"%s entry is not a {Key, Value} pair", key)
	}
	list, ok := tuple[1].(terms.List)
	if !ok || !list.IsProper() {
		return terms.List{}, errors.Newf(errors.ErrConfigParse,
			"%s is not a proper list", key)
	}
	return list, nil
}

// PrependToList puts item at the head of the list under key, creating
// {key, [item]} when the key is absent. It does not look for an existing
// copy of item.
func (d *Document) PrependToList(key string, item terms.Term) error {
	list, err := d.listValue(key)
	if err != nil {
		return err
	}
	elems := make([]terms.Term, 0, len(list.Elems)+1)
	elems = append(elems, item)
	elems = append(elems, list.Elems...)
	d.Upsert(key, terms.NewList(elems...))
	return nil
}

// EnsureInList prepends item to the list under key unless it is already a
// member. It reports whether the document changed.
func (d *Document) EnsureInList(key string, item terms.Term) (bool, error) {
	list, err := d.listValue(key)
	if err != nil {
		return false, err
	}
	for _, e := range list.Elems {
		if terms.Equal(e, item) {
			return false, nil
		}
	}
	return true, d.PrependToList(key, item)
}

// String renders the document one term per line
func (d *Document) String() string {
	var sb strings.Builder
	for _, e := range d.entries {
		if e.source != "" {
			sb.WriteString(e.source)
		} else {
			sb.WriteString(terms.FormatForm(e.term))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
