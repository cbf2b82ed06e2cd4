package main

import (
	"os"

	"fxsentinel/cmd/fxsentinel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
