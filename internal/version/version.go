// Package version exposes build information set through -ldflags.
package version

import (
	"flag"
	"runtime"
)

var (
	Version   = "devel"
	GitCommit = ""
	BuildDate = ""
)

type BuildInfo struct {
	Version   string `json:"version,omitempty"`
	GitCommit string `json:"gitCommit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
}

func Get() BuildInfo {
	v := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}

	if flag.Lookup("test.v") != nil {
		v.GoVersion = ""
	}
	return v
}

// UserAgent returns the User-Agent sent with outgoing HTTP requests.
func UserAgent() string {
	ver := Version
	if ver == "devel" && GitCommit != "" {
		ver = GitCommit
	}
	return "wadigest/" + ver
}
