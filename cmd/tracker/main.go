package main

import (
	"os"

	"github.com/alpha-arena/tracker/cmd/tracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
