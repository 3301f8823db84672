package main

import (
	"os"

	"github.com/cmorgan-fx/helm/cmd/helm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
