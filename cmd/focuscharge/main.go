package main

import (
	"os"

	"github.com/siegfried/focuscharge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
