// Package logger wraps zap for the emulator binaries:
//   - a global sugared logger writing console-encoded lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing so the level can come from YAML config or a CLI flag.
//
// Every component receives a context and logs through the logger stored in it,
// so per-connection fields (channel, remote address, session id) follow the
// request without being threaded through call signatures.
package logger
