// Package symlink installs dependencies into rebar3's build tree as
// symbolic links named by bare application name.
package symlink
