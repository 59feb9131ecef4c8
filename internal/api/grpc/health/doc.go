// Package health exposes emulator readiness over the standard gRPC
// health-checking protocol and provides the matching client.
//
// Each device channel is registered as its own service ("operate",
// "monitor", "overlord"); the empty service name reports the whole emulator.
package health
