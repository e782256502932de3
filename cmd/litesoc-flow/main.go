package main

import (
	"os"

	"github.com/litesoc/litesoc-flow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
