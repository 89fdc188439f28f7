package main

import (
	"os"

	"github.com/NashC/cashflow-analysis/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
