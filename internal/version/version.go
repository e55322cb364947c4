// Package version holds build metadata for the command-line tools.
package version

import "fmt"

// Overridden at link time, e.g.
//
//	go build -ldflags "-X schematic-editor/internal/version.Version=0.3.0"
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version line printed by -version flags.
func String(tool string) string {
	return fmt.Sprintf("%s %s (%s, built %s)", tool, Version, GitCommit, BuildTime)
}
