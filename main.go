package main

import (
	"os"

	"github.com/pocketvibe/pocketvibe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
