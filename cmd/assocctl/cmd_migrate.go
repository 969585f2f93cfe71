package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignite/assoc-admin/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := build(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if a.DB == nil {
			return fmt.Errorf("DATABASE_URL is required")
		}

		runner, err := migrate.NewRunner(a.DB)
		if err != nil {
			return err
		}
		if statusOnly, _ := cmd.Flags().GetBool("status"); statusOnly {
			pending, err := runner.Pending(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range pending {
				fmt.Fprintln(cmd.OutOrStdout(), "pending", m.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pending\n", len(pending))
			return nil
		}

		applied, err := runner.Up(cmd.Context())
		for _, name := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
		}
		return err
	},
}

func init() {
	migrateCmd.Flags().Bool("status", false, "list pending migrations without applying them")
}
