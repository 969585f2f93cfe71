// Command assocctl is the operator CLI: schema migrations, CSV exports and
// manual newsletter sends against the configured database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignite/assoc-admin/internal/app"
	"github.com/ignite/assoc-admin/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "assocctl",
	Short:         "Operate the association admin backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to the YAML config")
	rootCmd.AddCommand(migrateCmd, exportCmd, sendCmd)
}

// build loads the config and connects. The caller closes the App.
func build(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.Build(ctx, cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
