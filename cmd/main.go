package main

import (
	"os"

	"github.com/ragno-ai/ragno/cmd/ragno"
)

func main() {
	if err := ragno.Execute(); err != nil {
		os.Exit(1)
	}
}
