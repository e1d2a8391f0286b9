package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/tgienger/projecthub/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Version: version,
		Commit:  commit,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
