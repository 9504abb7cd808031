package main

import (
	"os"

	"github.com/MolecularAI/smartsrx/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
