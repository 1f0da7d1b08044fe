package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/rebar3-nix-bootstrap/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/rebar3-nix-bootstrap/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/rebar3-nix-bootstrap/internal/version.Date={{.Date}}
)

// String describes the build for --version style output
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
