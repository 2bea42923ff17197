// Package version provides build and version information for schemagraph.
package version

import (
	"fmt"
	"runtime"
)

// Version is the current release version of schemagraph.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/AaronLay10/schemagraph/internal/version.Version=x.y.z"
var Version = "0.1.0"

// Commit is the source revision, set the same way as Version.
var Commit = "unknown"

// String describes the build on one line.
func String() string {
	return fmt.Sprintf("schemagraph %s (%s, %s)", Version, Commit, runtime.Version())
}
