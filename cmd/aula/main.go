package main

import (
	"os"

	"github.com/bnema/aula-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
