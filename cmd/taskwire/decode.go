package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"taskwire/internal/codec"
	"taskwire/internal/models"
)

func newDecodeCmd(out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file|->",
		Short: "Decode a wire task object and show it",
		Args:  requireInput,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := decodeInput(cmd, args[0])
			if err != nil {
				return err
			}
			if out.structured() {
				return writeStructured(cmd.OutOrStdout(), out, codec.Encode(rec))
			}
			return writeTaskDetail(cmd.OutOrStdout(), rec)
		},
	}
}

// decodeInput reads and decodes one wire object. Any malformed field fails
// the whole decode.
func decodeInput(cmd *cobra.Command, arg string) (*models.TaskRecord, error) {
	data, err := readInput(cmd, arg)
	if err != nil {
		return nil, err
	}
	rec, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", inputName(arg), err)
	}
	for _, unknown := range rec.UnknownEnumerations() {
		slog.Warn("unknown enumeration value", "input", inputName(arg), "field", unknown.Field, "value", unknown.Value)
	}
	return rec, nil
}
