// ABOUTME: Entry point for the activities CLI binary
// ABOUTME: Injects release metadata and maps command errors to exit codes
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/harper/activities/cmd/activities/commands"
)

// Set with -ldflags "-X main.version=..." by release builds
var (
	version string
	commit  string
	date    string
)

func main() {
	os.Exit(run())
}

func run() int {
	commands.SetVersion(version, commit, date)

	err := commands.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}
