// File: cmd/list.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/camcheck/internal/checks"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the checks in execution order",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range checks.DefaultSuite() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), c.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
