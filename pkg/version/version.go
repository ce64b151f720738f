// Package version holds the build version of Kasumi.
package version

// Version is the current version of Kasumi.
// Set using -ldflags "-X go.minekube.com/kasumi/pkg/version.version=v1.2.3"
var version string = "unknown"

func String() string {
	return version
}

