package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func requireAtLeastArgs(min int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < min {
			return errors.New(message)
		}
		return nil
	}
}

func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}

var (
	requireInput   = requireExactlyArgs(1, "an input file is required (use - for stdin)")
	requireInputs  = requireAtLeastArgs(1, "at least one input file is required (use - for stdin)")
	requireOneID   = requireExactlyArgs(1, "a task id is required")
	requireUpToKey = cobra.MaximumNArgs(1)
)
