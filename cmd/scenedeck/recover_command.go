package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scenedeck/internal/config"
	"scenedeck/internal/project"
	"scenedeck/internal/session"
)

func newRecoverCommand(ctx *commandContext) *cobra.Command {
	var skipAll bool
	var deleteCuts []string
	var relinkSpecs []string

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "List missing assets and apply recovery decisions",
		Long: `Lists cuts whose assets cannot be found. Decisions:
  --relink <cutID>=<path>  re-import the asset from a newly located file
  --delete <cutID>         remove the referencing cut from its scene
  --skip-all               keep the remaining broken references as-is
With no decision flags the queue is only listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(s *session.Session) error {
				out := cmd.OutOrStdout()
				missing := s.Missing()
				if len(missing) == 0 {
					fmt.Fprintln(out, "No missing assets")
					return nil
				}

				rows := make([][]string, 0, len(missing))
				for _, item := range missing {
					rows = append(rows, []string{item.CutID, item.SceneID, item.Name, item.Asset.Path})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Cut", "Scene", "Asset", "Last known path"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))

				if !skipAll && len(deleteCuts) == 0 && len(relinkSpecs) == 0 {
					fmt.Fprintln(out, "No decisions given; queue left untouched")
					return nil
				}

				rs := s.Recovery()
				for _, spec := range relinkSpecs {
					cutID, path, ok := strings.Cut(spec, "=")
					if !ok {
						return fmt.Errorf("invalid --relink %q, want <cutID>=<path>", spec)
					}
					expanded, err := config.ExpandPath(strings.TrimSpace(path))
					if err != nil {
						return fmt.Errorf("resolve %q: %w", path, err)
					}
					if err := rs.Decide(strings.TrimSpace(cutID), project.Relink{NewPath: expanded}); err != nil {
						return err
					}
				}
				for _, cutID := range deleteCuts {
					if err := rs.Decide(strings.TrimSpace(cutID), project.Delete{}); err != nil {
						return err
					}
				}
				if skipAll {
					rs.SkipAll()
				}

				result := s.ApplyRecovery(cmd.Context(), rs)
				fmt.Fprintf(out, "%d relinked, %d deleted, %d skipped\n",
					result.Relinked, result.Deleted, result.Skipped)
				for _, failure := range result.Failures {
					fmt.Fprintf(out, "failed: %v\n", failure)
				}
				if len(result.Failures) > 0 {
					return fmt.Errorf("%d recovery decisions failed", len(result.Failures))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipAll, "skip-all", false, "Skip every undecided missing asset")
	cmd.Flags().StringArrayVar(&deleteCuts, "delete", nil, "Cut id whose broken reference should be removed (repeatable)")
	cmd.Flags().StringArrayVar(&relinkSpecs, "relink", nil, "cutID=path pair to re-import from a new location (repeatable)")
	return cmd
}
