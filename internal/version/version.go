// Package version holds build metadata, set at link time with
// -ldflags "-X github.com/itsmostafa/docstruct/internal/version.Version=...".
package version

import "fmt"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns the version with commit and build date.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}
