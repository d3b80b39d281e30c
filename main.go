package main

import (
	"os"

	"github.com/PhoenixMystique/alice-jobseeker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
