package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskwire/internal/codec"
	"taskwire/internal/config"
	"taskwire/internal/models"
	"taskwire/internal/store"
)

type putOutcome struct {
	Input  string          `json:"input" yaml:"input"`
	ID     int64           `json:"id" yaml:"id"`
	Result store.PutResult `json:"result" yaml:"result"`
}

func withStore(cfg *config.Config, fn func(*store.Store) error) error {
	st, err := store.Open(cfg.DBPath, store.Options{
		MaxOpenConns:  cfg.Store.MaxOpenConns,
		BusyTimeoutMS: cfg.Store.BusyTimeoutMS,
	})
	if err != nil {
		return fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	defer st.Close()
	return fn(st)
}

func newStoreCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep task snapshots in the local database",
	}

	cmd.AddCommand(
		newStorePutCmd(cfg, out),
		newStoreGetCmd(cfg, out),
		newStoreListCmd(cfg, out),
		newStoreHistoryCmd(cfg, out),
		newStoreRmCmd(cfg),
		newStoreStatusCmd(cfg, out),
	)
	return cmd
}

func newStorePutCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <file|->...",
		Short: "Decode task objects and store their snapshots",
		Args:  requireInputs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records := make([]*models.TaskRecord, 0, len(args))
			for _, arg := range args {
				rec, err := decodeInput(cmd, arg)
				if err != nil {
					return err
				}
				records = append(records, rec)
			}

			return withStore(cfg, func(st *store.Store) error {
				outcomes := make([]putOutcome, 0, len(records))
				for i, rec := range records {
					result, err := st.PutTask(cmd.Context(), rec)
					if err != nil {
						return fmt.Errorf("store %s: %w", inputName(args[i]), err)
					}
					outcomes = append(outcomes, putOutcome{Input: inputName(args[i]), ID: rec.ID, Result: result})
				}
				if out.structured() {
					return writeStructured(cmd.OutOrStdout(), out, outcomes)
				}
				for _, o := range outcomes {
					if err := writePlain(cmd.OutOrStdout(), "%s %d (%s)\n", o.Result, o.ID, o.Input); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newStoreGetCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show the latest stored snapshot of a task",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withStore(cfg, func(st *store.Store) error {
				rec, err := st.GetTask(cmd.Context(), id)
				if err != nil {
					return err
				}
				if out.structured() {
					return writeStructured(cmd.OutOrStdout(), out, codec.Encode(rec))
				}
				return writeTaskDetail(cmd.OutOrStdout(), rec)
			})
		},
	}
}

func newStoreListCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	var (
		incidentID int64
		status     string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored task snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := store.ListFilter{IncidentID: incidentID, Limit: limit}
			if status != "" {
				// Unknown codes still filter; they are stored verbatim.
				parsed, err := models.ParseTaskStatus(status)
				if parsed == "" && err != nil {
					return fmt.Errorf("invalid --status: %w", err)
				}
				filter.Status = parsed
			}

			return withStore(cfg, func(st *store.Store) error {
				summaries, err := st.ListTasks(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if out.structured() {
					return writeStructured(cmd.OutOrStdout(), out, summaries)
				}
				return writeSummaryList(cmd.OutOrStdout(), summaries)
			})
		},
	}

	cmd.Flags().Int64Var(&incidentID, "incident", 0, "only tasks of this incident id")
	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status (O, C, open, closed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of tasks")
	return cmd
}

func newStoreHistoryCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "List stored revisions of a task, newest first",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withStore(cfg, func(st *store.Store) error {
				revisions, err := st.ListRevisions(cmd.Context(), id)
				if err != nil {
					return err
				}
				if out.structured() {
					return writeStructured(cmd.OutOrStdout(), out, revisions)
				}
				return writeRevisionList(cmd.OutOrStdout(), revisions)
			})
		},
	}
}

func newStoreRmCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task snapshot and its revisions",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withStore(cfg, func(st *store.Store) error {
				if err := st.DeleteTask(cmd.Context(), id); err != nil {
					return err
				}
				return writePlain(cmd.OutOrStdout(), "deleted %d\n", id)
			})
		},
	}
}

func newStoreStatusCmd(cfg *config.Config, out *outputOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the schema version of the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				plan, err := st.MigrationPlan()
				if err != nil {
					return fmt.Errorf("inspect migrations: %w", err)
				}
				if out.structured() {
					return writeStructured(cmd.OutOrStdout(), out, plan)
				}
				return writeLines(cmd.OutOrStdout(), []string{
					fmt.Sprintf("Database: %s", cfg.DBPath),
					fmt.Sprintf("Current version: %d", plan.CurrentVersion),
					fmt.Sprintf("Available version: %d", plan.AvailableVersion),
				})
			})
		},
	}
}
