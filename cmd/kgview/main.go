package main

import (
	"os"

	"github.com/OFFIS-RIT/kgview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
