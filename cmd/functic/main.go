package main

import (
	"errors"
	"os"

	"github.com/effective-security/functic/cli"

	// function providers
	_ "github.com/effective-security/functic/functions/assorted"
	_ "github.com/effective-security/functic/functions/google"
	_ "github.com/effective-security/functic/functions/websearch"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
