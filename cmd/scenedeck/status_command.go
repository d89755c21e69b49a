package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"scenedeck/internal/preflight"
	"scenedeck/internal/session"
	"scenedeck/internal/vault"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show vault health, preflight checks, and trash contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			root, rootErr := ctx.vaultRoot()
			if rootErr != nil {
				root = ""
			}

			results := preflight.RunAll(cmd.Context(), cfg, root)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				state := "ok"
				if !r.Passed {
					state = "FAIL"
					if r.Optional {
						state = "missing (optional)"
					}
				}
				rows = append(rows, []string{r.Name, state, r.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "State", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "Healthy: %s\n", yesNo(preflight.Healthy(results)))

			if rootErr != nil {
				fmt.Fprintln(out, "No vault selected; pass --vault for vault details")
				return nil
			}

			return ctx.withSession(cmd.Context(), func(s *session.Session) error {
				p := s.Project()
				cuts := 0
				for _, scene := range p.Scenes {
					cuts += len(scene.Cuts)
				}
				fmt.Fprintf(out, "\nProject %q: %d scenes, %d cuts, %d indexed assets\n",
					p.Name, len(p.Scenes), cuts, s.Index().Len())

				if missing := s.Missing(); len(missing) > 0 {
					fmt.Fprintf(out, "%d missing assets (run scenedeck recover)\n", len(missing))
				}

				trash, err := vault.ListTrash(s.Layout())
				if err != nil {
					return fmt.Errorf("list trash: %w", err)
				}
				if len(trash) > 0 {
					var total int64
					for _, entry := range trash {
						total += entry.Size
					}
					fmt.Fprintf(out, "Trash: %d files, %s\n", len(trash), formatBytes(total))
				}

				if store := s.Catalog(); store != nil {
					imports, err := store.ImportHistory(cmd.Context(), s.Layout().Root, 5)
					if err != nil {
						return fmt.Errorf("import history: %w", err)
					}
					if len(imports) > 0 {
						fmt.Fprintf(out, "Last imports (%d):\n", len(imports))
						for _, rec := range imports {
							note := ""
							if rec.Duplicate {
								note = " (duplicate)"
							}
							fmt.Fprintf(out, "  %s  %s%s\n",
								rec.ImportedAt.Local().Format("2006-01-02 15:04"),
								filepath.Base(rec.OriginalPath), note)
						}
					}
				}
				return nil
			})
		},
	}
}
