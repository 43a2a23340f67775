// Package buildinfo holds version information injected at build time via ldflags:
//
//	-X github.com/breakreminder/breakreminder/internal/buildinfo.Version=1.2.0
package buildinfo

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String returns a one-line version summary.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
