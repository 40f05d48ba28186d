package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/redeembot/internal/app"
	"github.com/corey/redeembot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long:  "Prints the merged configuration: file values, environment overrides and defaults. The token itself is never printed.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	tokenStatus := fmt.Sprintf("%s✗ not set%s", colorYellow, colorReset)
	if cfg.Token != "" {
		tokenStatus = fmt.Sprintf("%s✓ set%s", colorGreen, colorReset)
	}
	dbStatus := fmt.Sprintf("%s✗ absent%s", colorYellow, colorReset)
	if _, err := os.Stat(app.DBPath(cfg.DataDir)); err == nil {
		dbStatus = fmt.Sprintf("%s✓ present%s", colorGreen, colorReset)
	}

	fmt.Printf("%s⚡ redeembot config%s\n", colorBold, colorReset)
	fmt.Printf("  File:       %s\n", cfgPath)
	fmt.Printf("  Token:      %s\n", tokenStatus)
	fmt.Printf("  Admins:     %d\n", len(cfg.Admins))
	fmt.Printf("  Data dir:   %s\n", cfg.DataDir)
	fmt.Printf("  Database:   %s %s\n", app.DBPath(cfg.DataDir), dbStatus)
	fmt.Printf("  Fetch:      %s timeout\n", cfg.FetchTimeout())
	fmt.Printf("  Retention:  %d days\n", cfg.RetentionDays)
	fmt.Printf("  Poll:       %ds\n", cfg.PollTimeoutSeconds)
	fmt.Printf("  Log level:  %s\n", cfg.LogLevel)

	return nil
}
