package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qbic/datamanager/internal/domain/project"
)

func projectCodeCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "project-code",
		Short: "Generate random project codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be positive, got %d", count)
			}
			for range count {
				fmt.Fprintln(cmd.OutOrStdout(), project.NewRandomCode().String())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of codes")
	return cmd
}
