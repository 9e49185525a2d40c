package main

import (
	"github.com/spf13/cobra"

	"taskwire/internal/codec"
)

func newEncodeCmd(out *outputOptions) *cobra.Command {
	var writable bool

	cmd := &cobra.Command{
		Use:   "encode <file|->",
		Short: "Re-encode a wire task object in canonical form",
		Long: "Re-encode a wire task object in canonical form: keys in wire order, " +
			"timestamps as epoch milliseconds and absent values as null.",
		Args: requireInput,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := decodeInput(cmd, args[0])
			if err != nil {
				return err
			}
			obj := codec.Encode(rec)
			if writable {
				obj = codec.EncodeWritable(rec)
			}
			return writeStructured(cmd.OutOrStdout(), out, obj)
		},
	}

	cmd.Flags().BoolVar(&writable, "writable", false, "omit read-only keys (update payload)")
	return cmd
}
