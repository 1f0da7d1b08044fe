// Package reconcile turns the dependency directories handed over by the
// packaging layer into install units named the way rebar3 expects.
//
// rebar3 looks dependencies up by bare application name, while packaged
// dependencies arrive as directories named name-version or
// name-version-tag, or as hex source trees whose store name carries a
// "-hex-source-" marker.
package reconcile
