// Package version holds restodex build metadata. Release builds set it with
//
//	go build -ldflags "-X github.com/kailas-cloud/restodex/internal/version.Version=v1.2.0 \
//	    -X github.com/kailas-cloud/restodex/internal/version.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/kailas-cloud/restodex/internal/version.Date=$(date -u +%FT%TZ)"
//
// and both the API server and restodexctl report it.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the metadata for --version output, e.g. "dev (unknown, built unknown)".
func String() string {
	return Version + " (" + Commit + ", built " + Date + ")"
}
