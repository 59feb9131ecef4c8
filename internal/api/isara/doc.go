// Package isara serves the robot controller protocol on the operate and
// monitor channels: carriage-return terminated ASCII commands in, carriage
// return terminated replies out, one command in flight per connection.
package isara
