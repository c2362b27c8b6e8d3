package main

import (
	"os"

	"github.com/presencewatch/presencewatch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
