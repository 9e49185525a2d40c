package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"taskwire/internal/codec"
)

var fieldCSVColumns = []string{"key", "go_name", "type", "read_only", "deprecated", "optional", "description"}

func newFieldsCmd(out *outputOptions) *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "fields [key]",
		Short: "List the wire fields of a task object",
		Long: "List the wire fields of a task object. Flags: r read-only, " +
			"d deprecated, ? optional. Pass a key for the details of one field.",
		Args: requireUpToKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				field, ok := codec.LookupField(args[0])
				if !ok {
					return fmt.Errorf("field %q was not found", args[0])
				}
				if out.structured() {
					return writeStructured(w, out, field)
				}
				return writeFieldDetail(w, field)
			}

			fields := codec.Fields()
			switch {
			case asCSV:
				return writeFieldsCSV(w, fields)
			case out.structured():
				return writeStructured(w, out, fields)
			}
			return writeFieldList(w, fields)
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "list fields as CSV")
	return cmd
}

func fieldFlags(f codec.FieldInfo) string {
	flags := []byte("   ")
	if f.ReadOnly {
		flags[0] = 'r'
	}
	if f.Deprecated {
		flags[1] = 'd'
	}
	if f.Optional {
		flags[2] = '?'
	}
	return string(flags)
}

func writeFieldList(w io.Writer, fields []codec.FieldInfo) error {
	lines := []string{"Fields:"}
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s %-18s %s", fieldFlags(f), f.Key, f.Type))
	}
	return writeLines(w, lines)
}

func writeFieldDetail(w io.Writer, f codec.FieldInfo) error {
	return writeLines(w, []string{
		fmt.Sprintf("Key:         %s", f.Key),
		fmt.Sprintf("Go name:     %s", f.GoName),
		fmt.Sprintf("Type:        %s", f.Type),
		fmt.Sprintf("Read-only:   %t", f.ReadOnly),
		fmt.Sprintf("Deprecated:  %t", f.Deprecated),
		fmt.Sprintf("Optional:    %t", f.Optional),
		fmt.Sprintf("Description: %s", f.Description),
	})
}

func writeFieldsCSV(w io.Writer, fields []codec.FieldInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fieldCSVColumns); err != nil {
		return err
	}
	for _, f := range fields {
		record := []string{
			f.Key,
			f.GoName,
			f.Type,
			strconv.FormatBool(f.ReadOnly),
			strconv.FormatBool(f.Deprecated),
			strconv.FormatBool(f.Optional),
			f.Description,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
