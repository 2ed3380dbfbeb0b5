package main

import (
	"os"

	"github.com/normanking/lipsync/cmd/lipsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
