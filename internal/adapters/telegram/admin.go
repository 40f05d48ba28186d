package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/corey/redeembot/internal/ports"
)

func (b *Bot) handleBan(uid, chatID int64, arg string) {
	if !b.isAdmin(uid) {
		return
	}
	target, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		b.reply(chatID, "Usage: /ban <userid>")
		return
	}
	if b.isAdmin(target) {
		b.reply(chatID, "❌ Cannot ban another admin.")
		return
	}
	if err := b.store.Ban(target); err != nil {
		log.WithError(err).Error("ban failed")
		b.reply(chatID, "❌ Storage error.")
		return
	}
	b.reply(chatID, fmt.Sprintf("🚫 User %d has been banned.", target))
}

func (b *Bot) handleUnban(uid, chatID int64, arg string) {
	if !b.isAdmin(uid) {
		return
	}
	target, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		b.reply(chatID, "Usage: /unban <userid>")
		return
	}
	was, err := b.store.Unban(target)
	if err != nil {
		log.WithError(err).Error("unban failed")
		b.reply(chatID, "❌ Storage error.")
		return
	}
	if !was {
		b.reply(chatID, "User is not banned.")
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ User %d unbanned.", target))
}

func (b *Bot) handleBannedList(uid, chatID int64) {
	if !b.isAdmin(uid) {
		return
	}
	banned, err := b.store.BannedUsers()
	if err != nil {
		log.WithError(err).Error("banned list failed")
		b.reply(chatID, "❌ Storage error.")
		return
	}
	if len(banned) == 0 {
		b.reply(chatID, "No banned users.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🚫 *Banned Users:*\n\n")
	for _, id := range banned {
		fmt.Fprintf(&sb, "• %d\n", id)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleAdminPanel(uid, chatID int64) {
	if !b.isAdmin(uid) {
		return
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Users Count", "adm_users"),
			tgbotapi.NewInlineKeyboardButtonData("🔢 Total Codes", "adm_codes"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Wipe All User Data", "adm_wipe"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Broadcast", "adm_broadcast"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "🛠 *Admin Panel*")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).Warn("send admin panel failed")
	}
}

func (b *Bot) handleBroadcast(uid, chatID int64, text string) {
	if !b.isAdmin(uid) {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		b.reply(chatID, "Usage: /broadcast <message>")
		return
	}

	users, err := b.store.KnownUsers()
	if err != nil {
		log.WithError(err).Error("broadcast user list failed")
		b.reply(chatID, "❌ Storage error.")
		return
	}

	sent := 0
	for _, user := range users {
		msg := tgbotapi.NewMessage(user, "📢 *Broadcast:*\n"+text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.api.Send(msg); err != nil {
			// Users who blocked the bot are expected; skip them.
			continue
		}
		sent++
	}
	b.reply(chatID, fmt.Sprintf("Sent to %d users.", sent))
}

func (b *Bot) handleAdminCallback(cq *tgbotapi.CallbackQuery) {
	uid := cq.From.ID
	if !b.isAdmin(uid) {
		b.answerCallback(cq.ID, "Not admin")
		return
	}
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	b.answerCallback(cq.ID, "")

	switch cq.Data {
	case "adm_users":
		users, err := b.store.KnownUsers()
		if err != nil {
			log.WithError(err).Error("user count failed")
			return
		}
		b.reply(chatID, fmt.Sprintf("👥 Total users: %d", len(users)))

	case "adm_codes":
		count, err := b.store.CodeCount()
		if err != nil {
			log.WithError(err).Error("code count failed")
			return
		}
		b.reply(chatID, fmt.Sprintf("🔢 Total unique global codes: %d", count))

	case "adm_wipe":
		if err := b.store.WipeAll(); err != nil {
			log.WithError(err).Error("wipe failed")
			b.reply(chatID, "❌ Wipe failed.")
			return
		}
		log.WithField("admin", uid).Warn("all user code data wiped")
		b.reply(chatID, "🗑 All user code data wiped.")

	case "adm_broadcast":
		b.reply(chatID, "Use:\n/broadcast <your message>")

	case "adm_get_my":
		b.sendUserStore(uid, chatID)

	case "adm_get_global":
		b.sendGlobalStore(chatID)
	}
}

// sendGlobalStore exports every user's records grouped by denomination.
func (b *Bot) sendGlobalStore(chatID int64) {
	all, err := b.store.AllRecords()
	if err != nil {
		log.WithError(err).Error("global export failed")
		b.reply(chatID, "❌ Storage error.")
		return
	}

	var records []ports.Record
	for _, rs := range all {
		records = append(records, rs...)
	}
	if len(records) == 0 {
		b.reply(chatID, "📂 No stored codes found.")
		return
	}

	files, err := writeDenominationFiles(b.exportDir, "global", records)
	if err != nil {
		log.WithError(err).Error("export write failed")
		b.reply(chatID, "❌ Could not generate files.")
		return
	}
	for _, f := range files {
		b.sendDocument(chatID, f.Path, fmt.Sprintf("🌍 %s — %d global codes", f.Denomination, f.Count))
	}
}
