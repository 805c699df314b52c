package main

import (
	"os"

	"github.com/benamedd/phytoscan/internal/cli"
)

// set by the release build with -ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.NewRootCommand(version, commit, date).Execute(); err != nil {
		os.Exit(1)
	}
}
