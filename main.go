package main

import (
	"os"

	"github.com/dlemos/caderno/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
