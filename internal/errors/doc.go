// Package errors provides error handling conventions for skillctx.
//
// It re-exports the constructors and inspection helpers of
// github.com/cockroachdb/errors so that every package wraps and matches
// errors the same way, and defines the [ExitError] type used by the CLI to
// map failures onto process exit codes.
//
// # Sentinel Errors
//
// Sentinel errors are matched with [Is]:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle missing document
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): command completed successfully
//   - ExitUser (1): invalid input, configuration or corpus content
//   - ExitSystem (2): I/O and other environmental failures
//
// # ExitError
//
// [ExitError] carries an exit code and an optional suggestion that the CLI
// prints below the error message:
//
//	return errors.NewUserError(err, "Run: skillctx validate")
package errors
