package cmd

import (
	"github.com/kodecrm/wacoex/infrastructure/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrationCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations and exit",
	Run: func(_ *cobra.Command, _ []string) {
		// initApp already ran AutoMigrate; this command exists so deploys can
		// migrate explicitly before rolling the rest server.
		logrus.Infof("[MIGRATION] schema is up to date (%d tables)", len(store.Tables))
	},
}

func init() {
	rootCmd.AddCommand(migrationCmd)
}
