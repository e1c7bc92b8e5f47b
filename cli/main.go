package main

import (
	"os"

	"github.com/nordsil/libpatch/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
