package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/corey/redeembot/internal/adapters/bbolt"
	"github.com/corey/redeembot/internal/app"
	"github.com/corey/redeembot/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored code statistics",
	Long:  "Reads the database directly and prints global code, user and ban counts. The bot must not be running.",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	dbPath := app.DBPath(cfg.DataDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("⚡ no data yet")
		return nil
	}

	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	codes, err := store.CodeCount()
	if err != nil {
		return err
	}
	known, err := store.KnownUsers()
	if err != nil {
		return err
	}
	banned, err := store.BannedUsers()
	if err != nil {
		return err
	}
	all, err := store.AllRecords()
	if err != nil {
		return err
	}

	byDenom := map[string]int{}
	for _, recs := range all {
		for _, r := range recs {
			byDenom[r.Denomination]++
		}
	}
	denoms := make([]string, 0, len(byDenom))
	for d := range byDenom {
		denoms = append(denoms, d)
	}
	sort.Strings(denoms)

	fmt.Printf("%s⚡ redeembot stats%s\n", colorBold, colorReset)
	fmt.Printf("  Codes:   %d\n", codes)
	fmt.Printf("  Users:   %d\n", len(known))
	fmt.Printf("  Banned:  %d\n", len(banned))
	for _, d := range denoms {
		fmt.Printf("    %-10s %d\n", d, byDenom[d])
	}
	return nil
}
