// Package main provides the chesshound CLI tool for building and exploring
// opening statistics from chess game collections.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
