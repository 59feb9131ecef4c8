package main

import "github.com/micromax/isara-emulator/cmd/overlord-cli/cmd"

func main() {
	cmd.Execute()
}
