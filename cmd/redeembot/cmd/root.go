package cmd

import (
	"github.com/spf13/cobra"
)

// cfgPath is the config file every subcommand reads. Relative to the
// working directory by default.
var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "redeembot",
	Short: "redeembot — Telegram voucher code collector",
	Long:  "Collects redeem codes from chat messages, Pastebin links and PDFs, deduplicates them globally, and keeps a per-user code store.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "redeembot.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(wipeCmd)
}
