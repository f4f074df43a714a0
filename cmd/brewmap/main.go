// Package main provides the entry point for the brewmap CLI tool.
package main

import (
	"github.com/brewmap/brewmap/cmd/brewmap/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
