// pkg/testutil/environment.go
// DEPENDENCIES: config (variable names)
// PURPOSE: Isolate tests from the environment the nix build provides

package testutil

import (
	"os"
	"testing"

	"github.com/arthur-debert/rebar3-nix-bootstrap/pkg/config"
)

// BootstrapVars lists every variable the bootstrap reads
var BootstrapVars = []string{
	config.EnvVersion,
	config.EnvName,
	config.EnvErlLibs,
	config.EnvBuildPlugins,
	config.EnvCompilePorts,
	config.EnvBuildCores,
	config.EnvNixDebug,
	config.EnvErlangRoot,
}

// SetEnv unsets every bootstrap variable for the rest of the test, then
// sets vars.
func SetEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, name := range BootstrapVars {
		t.Setenv(name, "")
		if err := os.Unsetenv(name); err != nil {
			t.Fatalf("unset %s: %v", name, err)
		}
	}
	for name, value := range vars {
		t.Setenv(name, value)
	}
}
