package main

import (
	"os"

	"github.com/authgate/authgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
