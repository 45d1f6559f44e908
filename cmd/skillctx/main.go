// Package main is the entry point for the skillctx CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/skillctx/cmd/skillctx/commands"
	"github.com/thoreinstein/skillctx/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintln(os.Stderr, exitErr.Suggestion)
	}
	os.Exit(errors.ExitCode(err))
}
