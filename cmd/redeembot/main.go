// redeembot collects voucher redeem codes from Telegram chats, pastes and
// PDFs, deduplicates them globally, and serves per-user code stores.
package main

import (
	"os"

	"github.com/corey/redeembot/cmd/redeembot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
