// Package buildinfo carries the version stamp injected at link time.
//
// Release builds set the three variables with ldflags, for example:
//
//	go build -ldflags "\
//	    -X github.com/voltlab/cdckit/pkg/buildinfo.Version=$(git describe --tags) \
//	    -X github.com/voltlab/cdckit/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/voltlab/cdckit/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds (go run, tests) keep the defaults below.
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" when not stamped.
	Version = "dev"

	// Commit identifies the source revision.
	Commit = "none"

	// Date is the UTC build time in RFC 3339 form.
	Date = "unknown"
)

// String renders the stamp as a multi-line block suitable for --version
// output and log headers.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}
