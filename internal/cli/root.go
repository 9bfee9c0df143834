// Package cli implements the circleledger command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mmynk/circleledger/internal/config"
	"github.com/mmynk/circleledger/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "circleledger",
	Short: "Shared expense ledger for circles of friends",
	Long: `circleledger records shared expenses inside groups, splits them equally, by
exact amounts or by percentage, and reports who owes whom either pair by pair
or as a simplified set of transfers.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a TOML config file")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
