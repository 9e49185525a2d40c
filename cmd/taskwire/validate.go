package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskwire/internal/codec"
)

var errValidationFailed = errors.New("validation failed")

type malformedEntry struct {
	Key      string `json:"key" yaml:"key"`
	Expected string `json:"expected" yaml:"expected"`
	Got      string `json:"got" yaml:"got"`
}

type enumerationEntry struct {
	Field string `json:"field" yaml:"field"`
	Value string `json:"value" yaml:"value"`
}

type validationReport struct {
	Input               string             `json:"input" yaml:"input"`
	Valid               bool               `json:"valid" yaml:"valid"`
	Malformed           []malformedEntry   `json:"malformed" yaml:"malformed"`
	UnknownEnumerations []enumerationEntry `json:"unknown_enumerations" yaml:"unknown_enumerations"`
	UnknownKeys         []string           `json:"unknown_keys" yaml:"unknown_keys"`
	DeprecatedKeys      []string           `json:"deprecated_keys" yaml:"deprecated_keys"`
}

func newValidateCmd(out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|->",
		Short: "Report malformed fields, unknown values and deprecated keys",
		Args:  requireInput,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			report, err := buildValidationReport(inputName(args[0]), data)
			if err != nil {
				return err
			}

			if out.structured() {
				err = writeStructured(cmd.OutOrStdout(), out, report)
			} else {
				err = writeLines(cmd.OutOrStdout(), report.lines())
			}
			if err != nil {
				return err
			}
			if !report.Valid {
				return errValidationFailed
			}
			return nil
		},
	}
}

func buildValidationReport(input string, data []byte) (*validationReport, error) {
	report := &validationReport{
		Input:               input,
		Malformed:           []malformedEntry{},
		UnknownEnumerations: []enumerationEntry{},
		UnknownKeys:         []string{},
		DeprecatedKeys:      []string{},
	}

	rec, err := codec.Decode(data)
	var decodeErr *codec.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		for _, f := range decodeErr.Fields {
			report.Malformed = append(report.Malformed, malformedEntry{Key: f.Key, Expected: f.Expected, Got: f.Raw})
		}
	case err != nil:
		return nil, fmt.Errorf("validate %s: %w", input, err)
	}

	for _, unknown := range rec.UnknownEnumerations() {
		report.UnknownEnumerations = append(report.UnknownEnumerations, enumerationEntry{Field: unknown.Field, Value: unknown.Value})
	}

	unknownKeys, err := codec.UnknownKeys(data)
	if err != nil {
		return nil, err
	}
	report.UnknownKeys = append(report.UnknownKeys, unknownKeys...)

	deprecated, err := codec.DeprecatedKeys(data)
	if err != nil {
		return nil, err
	}
	report.DeprecatedKeys = append(report.DeprecatedKeys, deprecated...)

	report.Valid = len(report.Malformed) == 0
	return report, nil
}

func (r *validationReport) lines() []string {
	var lines []string
	for _, m := range r.Malformed {
		lines = append(lines, fmt.Sprintf("error: %s: expected %s, got %s", m.Key, m.Expected, m.Got))
	}
	for _, e := range r.UnknownEnumerations {
		lines = append(lines, fmt.Sprintf("warning: %s: unknown value %q", e.Field, e.Value))
	}
	for _, key := range r.UnknownKeys {
		lines = append(lines, fmt.Sprintf("warning: %s: unknown key", key))
	}
	for _, key := range r.DeprecatedKeys {
		lines = append(lines, fmt.Sprintf("warning: %s: deprecated key is populated", key))
	}
	if r.Valid {
		lines = append(lines, fmt.Sprintf("%s: valid", r.Input))
	}
	return lines
}
