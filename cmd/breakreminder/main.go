// Package main is the entry point for the breakreminder CLI.
package main

import (
	"os"

	"github.com/breakreminder/breakreminder/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}
}
