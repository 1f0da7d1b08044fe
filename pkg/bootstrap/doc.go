// Package bootstrap prepares a rebar3 project inside an offline nix build
// so that rebar3 finds every dependency already installed.
//
// A run goes through three stages in order and stops at the first error:
//
//   - configs: set the version in src/<name>.app.src, add the port compiler
//     plugin and debug_info to rebar.config when asked to
//   - plugins: link build plugins into _build/default/plugins
//   - libs: link ERL_LIBS applications into _build/default/lib
//
// Links made before a failure are left in place.
package bootstrap
