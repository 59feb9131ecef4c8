package main

import "github.com/micromax/isara-emulator/cmd/isara-emulator/cmd"

func main() {
	cmd.Execute()
}
