package main

import (
	"os"

	"github.com/wonny/valuator/cmd/valuator/commands"
)

// main is the entry point for the valuator CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
