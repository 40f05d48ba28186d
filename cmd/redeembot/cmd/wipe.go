package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/redeembot/internal/adapters/bbolt"
	"github.com/corey/redeembot/internal/app"
	"github.com/corey/redeembot/internal/config"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Clear all stored codes",
	Long:  "Deletes every code and the global dedup registry. Known and banned user lists are kept. The bot must not be running.",
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "Skip confirmation prompt")
}

func runWipe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	dbPath := app.DBPath(cfg.DataDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("⚡ no data to wipe")
		return nil
	}

	if !wipeForce {
		fmt.Printf("⚠ This will delete every stored code in %s. Continue? [y/N] ", dbPath)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("cancelled")
			return nil
		}
	}

	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if err := store.WipeAll(); err != nil {
		store.Close()
		return err
	}
	store.Close()

	fmt.Println("⚡ all codes wiped")
	return nil
}
