package main

import (
	"os"

	"github.com/norm/captiond/cmd/captiond/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
