package main

import (
	"os"

	"github.com/meatline/meatline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
