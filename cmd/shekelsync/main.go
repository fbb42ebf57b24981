package main

import (
	"os"

	"github.com/shekelsync/shekelsync/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
