package main

import (
	"os"

	"github.com/stratoshell/stratoshell/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
