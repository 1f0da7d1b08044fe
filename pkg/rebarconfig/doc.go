// Package rebarconfig rewrites rebar.config and single application .app.src
// files in place.
//
// A Document holds the top-level terms of a file in order. Keyed updates
// follow lists:keystore/4: the first {Key, ...} tuple is replaced, otherwise
// the new entry is appended. Entries that are not touched are written back
// with their original text.
package rebarconfig
