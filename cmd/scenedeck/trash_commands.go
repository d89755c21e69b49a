package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scenedeck/internal/session"
	"scenedeck/internal/vault"
)

func newTrashCommand(ctx *commandContext) *cobra.Command {
	trashCmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and purge the vault trash",
	}
	trashCmd.AddCommand(newTrashListCommand(ctx))
	trashCmd.AddCommand(newTrashPurgeCommand(ctx))
	return trashCmd
}

func newTrashListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trashed files with provenance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(s *session.Session) error {
				entries, err := vault.ListTrash(s.Layout())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Trash is empty")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					assetID, reason, trashedAt := "", "", ""
					if entry.Meta != nil {
						assetID = entry.Meta.AssetID
						reason = entry.Meta.Reason
						if !entry.Meta.TrashedAt.IsZero() {
							trashedAt = entry.Meta.TrashedAt.Local().Format("2006-01-02 15:04")
						}
					}
					rows = append(rows, []string{
						entry.Path, assetID, reason, trashedAt, formatBytes(entry.Size),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"File", "Asset", "Reason", "Trashed", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newTrashPurgeCommand(ctx *commandContext) *cobra.Command {
	var olderThanDays int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove trashed files older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			days := olderThanDays
			if days <= 0 {
				days = cfg.Trash.RetentionDays
			}

			return ctx.withSession(cmd.Context(), func(s *session.Session) error {
				result := vault.PurgeTrash(s.Layout(), time.Duration(days)*24*time.Hour, ctx.ensureLogger())
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Purged %d files older than %d days\n", len(result.Removed), days)
				for _, purgeErr := range result.Errors {
					fmt.Fprintf(out, "failed: %v\n", purgeErr)
				}
				if len(result.Errors) > 0 {
					return fmt.Errorf("%d trash entries could not be purged", len(result.Errors))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Override retention in days (default: config trash.retention_days)")
	return cmd
}
