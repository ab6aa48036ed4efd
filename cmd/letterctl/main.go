package main

import (
	"os"

	"github.com/noah-isme/hr-letter-api/internal/cli"
)

func main() {
	if err := cli.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
