package main

import (
	"motionfm/cmd"
)

func main() {
	// Execute exits the process itself on failure. The player loop only
	// returns here after a shutdown signal.
	cmd.Execute()
}
