package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scenedeck/internal/catalog"
)

func newRecentCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened vaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			vaults, err := store.RecentVaults(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(vaults) == 0 {
				fmt.Fprintln(out, "No vaults opened yet")
				return nil
			}

			rows := make([][]string, 0, len(vaults))
			for _, v := range vaults {
				rows = append(rows, []string{
					v.ProjectName,
					v.Root,
					v.LastOpenedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Project", "Vault", "Last opened"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 10, "Maximum number of vaults to list")
	return cmd
}
