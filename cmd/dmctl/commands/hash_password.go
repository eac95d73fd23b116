package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qbic/datamanager/internal/domain/identity"
)

// hash-password reads the password from stdin so it does not end up in the
// shell history
func hashPasswordCmd() *cobra.Command {
	var iterations int
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Encrypt a password read from stdin for the users table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password given on stdin")
			}
			policy := identity.DefaultPasswordPolicy()
			if iterations > 0 {
				policy.Iterations = iterations
			}
			encrypted, err := policy.Encrypt(strings.TrimRight(line, "\r\n"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encrypted)
			return nil
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 0, "PBKDF2 iterations (default from the password policy)")
	return cmd
}
