package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scenedeck/internal/config"
	"scenedeck/internal/session"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var sceneFlag string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import files into the vault and append cuts to a scene",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := make([]string, 0, len(args))
			for _, arg := range args {
				expanded, err := config.ExpandPath(strings.TrimSpace(arg))
				if err != nil {
					return fmt.Errorf("resolve %q: %w", arg, err)
				}
				sources = append(sources, expanded)
			}

			return ctx.withSession(cmd.Context(), func(s *session.Session) error {
				summary := s.Import(cmd.Context(), strings.TrimSpace(sceneFlag), sources)

				out := cmd.OutOrStdout()
				for _, asset := range summary.Imported {
					marker := "imported"
					if !asset.Managed() {
						marker = "unmanaged (import failed, kept original path)"
					}
					fmt.Fprintf(out, "%s: %s\n", marker, asset.Name)
				}
				fmt.Fprintf(out, "%d imported, %d deduplicated, %d failed\n",
					len(summary.Imported), summary.Duplicates, len(summary.Failed))
				for _, failure := range summary.Failed {
					fmt.Fprintf(out, "failed: %v\n", failure)
				}
				if len(summary.Failed) > 0 {
					return fmt.Errorf("%d of %d imports failed", len(summary.Failed), len(sources))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&sceneFlag, "scene", "s", "", "Target scene id (default: first scene)")
	return cmd
}
