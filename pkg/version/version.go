package version

import (
	"runtime"
	"runtime/debug"
)

// Build variables set via ldflags:
// -X 'github.com/compozy/jsswitch/pkg/version.Version=v1.0.0'
var (
	Version    = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info is the build identity of the binary.
type Info struct {
	Version    string `json:"version"     yaml:"version"`
	CommitHash string `json:"commit_hash" yaml:"commit_hash"`
	BuildDate  string `json:"build_date"  yaml:"build_date"`
	GoVersion  string `json:"go_version"  yaml:"go_version"`
}

// Get returns build information. Values not injected at link time are taken
// from the embedded build info when available.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "unknown" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.CommitHash == "unknown" {
				info.CommitHash = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		}
	}
	return info
}

func (i Info) String() string {
	return i.Version + " (commit " + i.CommitHash + ", built " + i.BuildDate + ", " + i.GoVersion + ")"
}
