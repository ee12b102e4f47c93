package main

import (
	"os"

	"github.com/kochabx/smkit/cmd/smkit/cmd"
)

func main() {
	// cobra already printed the error, only the exit status is left
	if cmd.Execute() != nil {
		os.Exit(1)
	}
}
