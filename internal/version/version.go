// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set at build time.
var (
	Version = "dev"
	Commit  = "unknown"
)
