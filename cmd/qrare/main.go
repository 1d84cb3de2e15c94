// Package main provides the qrare CLI entrypoint.
//
// Usage:
//
//	qrare [global options] <command> [options] [arguments]
//
// Exit codes:
//   - 0: success
//   - 1: unexpected failure
//   - 2: invalid parameters or arguments
//   - 3: artifact could not be read
//   - 4: malformed transport unit
//   - 5: incomplete or inconsistent chunk set
//   - 6: corrupt compressed payload
//   - 7: content hash mismatch
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/cli/cmd"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := cmd.NewApp(commit)
	app.ExitErrHandler = exitErrHandler

	if err := app.Run(os.Args); err != nil {
		// Flag parsing errors bypass ExitErrHandler.
		os.Exit(report(os.Stderr, err))
	}
}

// exitErrHandler prints err and exits with the code for its kind.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	os.Exit(report(os.Stderr, err))
}

// report writes err to w and returns its exit code. cli.Exit errors
// keep their code; classified conversion errors map by kind.
func report(w io.Writer, err error) int {
	code := cmd.ExitCode(err)

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		msg := exitCoder.Error()
		// cli.Exit("", N).Error() returns "exit status N"
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(w, msg)
		}
		return code
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return code
}
