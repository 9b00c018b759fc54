package cmd

import (
	"geohash-service/config"
	"geohash-service/migration"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return migration.Run(cfg.DB.DSN(), cfg.DB.MigrationsPath)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
