// Package version carries the build version. Override with
// -ldflags "-X recgroup/internal/version.Version=v1.2.3".
package version

var Version = "dev"
