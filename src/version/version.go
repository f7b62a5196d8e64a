// Package version holds the CLI version string, overridable at build
// time with -ldflags "-X savevault/src/version.Version=...".
package version

var Version = "0.3.0"
