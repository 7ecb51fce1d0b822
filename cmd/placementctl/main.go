// cmd/placementctl/main.go
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/placement-backend/internal/app"
	"github.com/javajoker/placement-backend/internal/config"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "placementctl",
		Short: "Operator tooling for the placement engine",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded
			app.SetupLogging(cfg.Logging)
			return nil
		},
		SilenceUsage: true,
	}
)

func main() {
	rootCmd.AddCommand(migrateCmd, seedCmd, reconcileCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
