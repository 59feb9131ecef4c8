// Package version holds the emulator build metadata.
//
// Version, Commit and BuildTime are set with -ldflags at release time.
package version
