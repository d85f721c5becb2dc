// Package env holds build-time identity constants for the CLI banner and
// structured log output.
package env

// AppName is the executable name used in the CLI banner and --help output.
const AppName = "mftinv"

// Version, CommitHash and BuildTime are overridden at build time with
// -ldflags "-X github.com/ntfsinv/mftinv/internal/env.Version=...".
var (
	Version    = "dev"
	CommitHash = "none"
	BuildTime  = "unknown"
)
