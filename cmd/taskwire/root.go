package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskwire/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	out := &outputOptions{defaultFormat: cfg.Output}
	var logLevel string

	cmd := &cobra.Command{
		Use:           "taskwire",
		Short:         "Taskwire decodes, validates and snapshots incident task records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			_, err = out.formatter()
			return err
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&out.json, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&out.format, "output", "", "structured output format: json or yaml")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newDecodeCmd(out),
		newEncodeCmd(out),
		newValidateCmd(out),
		newFieldsCmd(out),
		newStoreCmd(cfg, out),
		newConfigCmd(cfg),
	)

	return cmd
}
