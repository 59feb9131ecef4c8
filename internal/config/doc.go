// Package config defines the emulator settings and provides helpers to load,
// validate and save them in YAML format.
//
// Every key is optional: a missing file at the default location yields
// Default(), and command-line flags override whatever the file provides.
package config
