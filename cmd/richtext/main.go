// Package main is the entry point for the richtext CLI.
package main

import (
	"os"

	"github.com/weirin1/html/cmd/richtext/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
