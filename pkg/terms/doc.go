// Package terms reads and writes the subset of Erlang term syntax found in
// rebar3 configuration files and application resource files.
//
// A file is a sequence of forms, each a single term closed by a full stop.
// Parse keeps the source text of every form so that callers can write back
// the forms they did not change exactly as they were found. Format prints a
// term in compact canonical form.
//
// Integers, floats, characters and binaries are kept as their source text;
// nothing in a bootstrap needs their numeric value.
package terms
