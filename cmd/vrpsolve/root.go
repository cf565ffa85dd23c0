package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitError carries the process exit code a command wants on failure,
// per spec.md §6 "Exit codes: 0 success, 1 I/O or parse error, 2
// validation error".
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func ioErr(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 1, err: err}
}

func validationErr(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 2, err: err}
}

var rootCmd = &cobra.Command{
	Use:           "vrpsolve",
	Short:         "vrpsolve runs the ruin-and-recreate evolution loop over a normalized VRP problem",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(checkCmd)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "vrpsolve:", ee.err)
			return ee.code
		}
		fmt.Fprintln(os.Stderr, "vrpsolve:", err)
		return 1
	}
	return 0
}
