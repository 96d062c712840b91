// Package main is the entry point for the hop binary.
//
// Run without arguments on a terminal, hop opens the server picker; with a
// verb (add, list, connect, ...) it runs that command and exits. The exit
// status follows cli.ExitCode, so a failed ssh session exits with ssh's own
// status.
package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/alpemreelmas/hop-cli/internal/cli"
	"github.com/alpemreelmas/hop-cli/internal/sshclient"
)

var version = "dev"

func main() {
	err := fang.Execute(
		context.Background(),
		cli.NewRootCommand(),
		fang.WithVersion(version),
		fang.WithErrorHandler(handleError),
	)
	os.Exit(cli.ExitCode(err))
}

// handleError stays quiet for a failed remote session: ssh already told the
// user what went wrong.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *sshclient.ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
