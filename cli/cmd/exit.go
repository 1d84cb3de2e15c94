package cmd

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/types"
)

// Exit codes by error kind.
const (
	exitSuccess     = 0
	exitFailure     = 1
	exitValidation  = 2
	exitCarrierRead = 3
	exitMalformed   = 4
	exitConsistency = 5
	exitTransform   = 6
	exitIntegrity   = 7
)

// ExitCode maps an error to the process exit code for its kind.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return exitCoder.ExitCode()
	}
	switch types.KindOf(err) {
	case types.KindValidation:
		return exitValidation
	case types.KindCarrierRead:
		return exitCarrierRead
	case types.KindMalformedRecord:
		return exitMalformed
	case types.KindChunkConsistency:
		return exitConsistency
	case types.KindTransform:
		return exitTransform
	case types.KindIntegrity:
		return exitIntegrity
	default:
		return exitFailure
	}
}

// exitError wraps err in a cli.Exit carrying its exit code.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err.Error(), ExitCode(err))
}
