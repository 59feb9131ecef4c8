// Package acceptor runs TCP accept loops: one goroutine per accepted
// connection, each handed to a connection handler, with orderly shutdown on
// context cancellation.
package acceptor
