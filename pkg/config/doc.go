// Package config builds the RunConfig for one bootstrap run.
// It supports loading configuration from an embedded TOML layout file and
// from the environment prepared by the nix build, plus the single
// command-line argument the tool accepts.
package config
