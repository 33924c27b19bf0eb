// Package consts houses some constants needed across camoufox-server
package consts

import (
	"fmt"
	"runtime"
)

// Version contains the current semantic version of camoufox-server.
const Version = "0.1.0"

// VersionDetails can be set externally as part of the build process
var VersionDetails = "" //nolint:gochecknoglobals

// FullVersion returns the maximally full version and build information for
// the currently running camoufox-server executable.
func FullVersion() string {
	goVersionArch := fmt.Sprintf("%s, %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if VersionDetails != "" {
		return fmt.Sprintf("%s (%s, %s)", Version, VersionDetails, goVersionArch)
	}

	return fmt.Sprintf("%s (%s)", Version, goVersionArch)
}
