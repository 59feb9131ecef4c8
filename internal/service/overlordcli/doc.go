// Package overlordcli is an interactive overlord client: it prints the
// attribute updates the emulator pushes and turns typed lines such as
// "set_door_closed false" into overlord commands.
package overlordcli
