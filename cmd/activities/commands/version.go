// ABOUTME: Version command and build metadata for the activities CLI
// ABOUTME: Falls back to Go module build info when no release values were injected
package commands

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

var versionInfo = VersionInfo{Version: "dev", Commit: "none", Date: "unknown"}

// SetVersion records release metadata injected at link time. Empty values
// keep the defaults.
func SetVersion(version, commit, date string) {
	if version != "" {
		versionInfo.Version = version
	}
	if commit != "" {
		versionInfo.Commit = commit
	}
	if date != "" {
		versionInfo.Date = date
	}
}

// currentVersion fills gaps from the embedded build info, so `go install`
// builds still report a module version and VCS revision.
func currentVersion() VersionInfo {
	v := versionInfo
	v.Go = runtime.Version()

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if v.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if v.Commit == "none" {
				v.Commit = s.Value
			}
		case "vcs.time":
			if v.Date == "unknown" {
				v.Date = s.Value
			}
		}
	}
	return v
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := currentVersion()

			switch {
			case outputFormat == "json":
				return printJSON(cmd, v)
			case quiet:
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), v.Version)
			default:
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Activities %s (%s, built %s, %s)\n",
					v.Version, shortCommit(v.Commit), v.Date, v.Go)
			}
			return nil
		},
	}
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
