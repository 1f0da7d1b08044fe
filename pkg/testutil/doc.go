// Package testutil builds throwaway rebar3 projects and dependency trees
// for tests, and isolates tests from the bootstrap's environment variables.
package testutil
