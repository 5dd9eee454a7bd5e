// Package version holds build metadata injected via -ldflags.
package version

import "fmt"

var (
	// Version is the release version, set at build time.
	Version = "dev"
	// Commit is the git commit hash the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// Info returns a single-line human-readable version string.
func Info() string {
	return fmt.Sprintf("pressmin %s (commit: %s, built: %s)", Version, Commit, Date)
}
