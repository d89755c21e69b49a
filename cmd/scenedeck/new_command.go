package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scenedeck/internal/config"
	"scenedeck/internal/session"
	"scenedeck/internal/textutil"
)

func newNewCommand(ctx *commandContext) *cobra.Command {
	var nameFlag string

	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a new vault with an empty project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve vault path: %w", err)
			}

			name := strings.TrimSpace(nameFlag)
			if name == "" {
				name = textutil.DisplayName(filepath.Base(root))
			}

			s, err := session.Create(cmd.Context(), cfg, root, name, ctx.ensureLogger(), session.Options{})
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close(cmd.Context())
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Created vault %s (project %q)\n", root, name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Project name (default: derived from the directory name)")
	return cmd
}
