// Package metrics defines the Prometheus collectors of the emulator and the
// HTTP handler exposing them. A nil *Metrics is valid and records nothing.
package metrics
