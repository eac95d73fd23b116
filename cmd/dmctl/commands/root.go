// Package commands holds the dmctl subcommands.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the dmctl command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dmctl",
		Short:         "Data manager administration",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(projectCodeCmd(), hashPasswordCmd(), linksCmd(), migrateCmd())
	return root
}

// Execute runs dmctl with the process arguments
func Execute() error {
	return NewRootCommand().Execute()
}
