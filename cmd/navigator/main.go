// Navigator grounds an AI storyteller's narration in a 2D world map.
// Usage: navigator [--config file] [--world path] <command>
package main

import (
	"fmt"
	"os"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("navigator %s (commit %s, built %s)", version, commit, date)
}
