// Package emulator wires the emulated device to its network endpoints and
// runs them until shutdown.
package emulator
