// Package build carries the identifiers stamped into the binary at
// link time via -ldflags. Defaults describe a local, unstamped build.
package build

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"
	// Commit is the short hash of the built revision.
	Commit = "none"
	// BuildTime is when the binary was linked, RFC 3339.
	BuildTime = "unknown"
)

// FullVersion renders the version with the commit appended, such as
// "0.3.1+4f9c2aa".
func FullVersion() string {
	return Version + "+" + Commit
}
