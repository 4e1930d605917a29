package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/waveline/waveline/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands format their own errors; only surface ones that slipped
		// through (flag parsing, unexpected failures).
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
