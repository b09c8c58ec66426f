// Package version provides information about the build version of the server.
package version

// BuildInfo holds version information about the server build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	return BuildInfo{
		Service: "newrelic-mcp",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "0.1.0"
	commit  = "none"
	date    = "unknown"
)
