// Package main provides the entry point for the goalkit CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := Execute(); err != nil {
		fatal(err)
		os.Exit(1)
	}
}
