package telegram

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/corey/redeembot/internal/adapters/pastebin"
	"github.com/corey/redeembot/internal/domain/code"
	"github.com/corey/redeembot/internal/domain/pipeline"
)

const helpText = `📘 *Commands*
/w <pastebin> – Extract codes from Pastebin
/getstore – Download denomination-split TXT files
/clearstore – Delete your codes
/stats – View your counts
/remove <code> – Remove one code
You may also upload PDFs.`

// denomOptions are the fixed choices offered when a detected code has no
// inferable denomination.
var denomOptions = []string{"₹1000", "₹2000", "₹3000", "₹4000", "₹5000"}

// callback data prefixes
const (
	cbDenomPrefix = "denom_"
	cbAdminPrefix = "adm_"
)

func (b *Bot) handleStart(uid, chatID int64) {
	if err := b.store.AddKnownUser(uid); err != nil {
		log.WithError(err).Error("track user failed")
	}
	b.reply(chatID, "👋 Welcome! Send voucher codes or use /help")
}

func (b *Bot) handlePaste(uid, chatID int64, arg string) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		b.reply(chatID, "Usage: /w <pastebin link>")
		return
	}

	url := pastebin.RawURL(arg)
	ctx, cancel := b.fetchContext()
	defer cancel()
	text, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		log.WithError(err).WithField("url", url).Warn("paste fetch failed")
		b.reply(chatID, "❌ Could not fetch Pastebin link.")
		return
	}

	res, err := b.pipe.Ingest(uid, text, pipeline.SourcePaste)
	if err != nil {
		log.WithError(err).Error("paste ingest failed")
		b.reply(chatID, "❌ Storage error, codes were not saved.")
		return
	}
	if res.Empty() {
		b.reply(chatID, "⚠ No codes found in Pastebin.")
		return
	}

	b.reportDuplicates(chatID, res.Duplicates)
	if res.Saved > 0 {
		b.reply(chatID, fmt.Sprintf("✔ Saved %d new codes.", res.Saved))
	} else {
		b.reply(chatID, "⚠ No new codes found.")
	}
}

func (b *Bot) handleDocument(uid int64, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	data, err := b.downloadFile(msg.Document.FileID)
	if err != nil {
		log.WithError(err).Warn("document download failed")
		b.reply(chatID, "❌ Error reading PDF file.")
		return
	}

	text, err := b.extractor.ExtractText(data)
	if err != nil {
		log.WithError(err).WithField("file", msg.Document.FileName).Warn("pdf extraction failed")
		b.reply(chatID, "❌ Error reading PDF file.")
		return
	}

	res, err := b.pipe.Ingest(uid, text, pipeline.SourcePDF)
	if err != nil {
		log.WithError(err).Error("pdf ingest failed")
		b.reply(chatID, "❌ Storage error, codes were not saved.")
		return
	}
	if res.Empty() {
		b.reply(chatID, "⚠ No codes found in PDF.")
		return
	}

	b.reportDuplicates(chatID, res.Duplicates)
	if res.Saved == 0 {
		b.reply(chatID, "⚠ No new unique codes found.")
		return
	}

	files, err := writeDenominationFiles(b.exportDir, fmt.Sprintf("%d", uid), res.Stored)
	if err != nil {
		log.WithError(err).Error("export write failed")
		b.reply(chatID, fmt.Sprintf("✔ Saved %d new codes.", res.Saved))
		return
	}
	for _, f := range files {
		b.sendDocument(chatID, f.Path, fmt.Sprintf("📄 %d new codes saved", f.Count))
	}
}

func (b *Bot) handleAutoDetect(uid int64, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	res, err := b.pipe.Ingest(uid, msg.Text, pipeline.SourceChat)
	if err != nil {
		log.WithError(err).Error("auto-detect ingest failed")
		b.reply(chatID, "❌ Storage error, codes were not saved.")
		return
	}
	if res.Empty() {
		return // plain chatter, stay quiet
	}

	log.WithFields(log.Fields{
		"user":    uid,
		"saved":   res.Saved,
		"pending": len(res.Pending),
	}).Info("auto-detected codes")

	b.reportDuplicates(chatID, res.Duplicates)

	if len(res.Stored) > 0 {
		var lines []string
		for _, r := range res.Stored {
			lines = append(lines, fmt.Sprintf("`%s` — %s", code.Normalize(r.Code), r.Denomination))
		}
		b.reply(chatID, "✔ *Saved auto-detected codes:*\n\n"+strings.Join(lines, "\n"))
	}

	if len(res.Pending) > 0 {
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, amt := range denomOptions {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(amt, cbDenomPrefix+amt),
			))
		}

		var display []string
		for _, c := range res.Pending {
			display = append(display, fmt.Sprintf("• `%s`", code.Normalize(c)))
		}

		prompt := tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"🎯 *These codes need denomination selection:*\n\n%s\n\nChoose:",
			strings.Join(display, "\n")))
		prompt.ParseMode = tgbotapi.ModeMarkdown
		prompt.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
		if _, err := b.api.Send(prompt); err != nil {
			log.WithError(err).Warn("send denomination prompt failed")
		}
	}
}

// reportDuplicates tells the submitter which codes were already claimed.
func (b *Bot) reportDuplicates(chatID int64, dups []pipeline.Duplicate) {
	for _, d := range dups {
		b.reply(chatID, fmt.Sprintf("⚠ Already saved: `%s`", d.Key))
	}
}

func (b *Bot) handleGetStore(uid, chatID int64) {
	if b.isAdmin(uid) {
		kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📁 My Codes", "adm_get_my"),
			tgbotapi.NewInlineKeyboardButtonData("🌍 Global Codes", "adm_get_global"),
		))
		msg := tgbotapi.NewMessage(chatID, "Select:")
		msg.ReplyMarkup = kb
		if _, err := b.api.Send(msg); err != nil {
			log.WithError(err).Warn("send getstore choice failed")
		}
		return
	}
	b.sendUserStore(uid, chatID)
}

// sendUserStore exports uid's records grouped by denomination and uploads
// one file per group.
func (b *Bot) sendUserStore(uid, chatID int64) {
	records, err := b.store.List(uid)
	if err != nil {
		log.WithError(err).Error("list store failed")
		b.reply(chatID, "❌ Storage error.")
		return
	}
	if len(records) == 0 {
		b.reply(chatID, "📂 No stored codes found.")
		return
	}

	files, err := writeDenominationFiles(b.exportDir, fmt.Sprintf("%d", uid), records)
	if err != nil {
		log.WithError(err).Error("export write failed")
		b.reply(chatID, "❌ Could not generate files.")
		return
	}
	for _, f := range files {
		b.sendDocument(chatID, f.Path, fmt.Sprintf("%s — %d codes", f.Denomination, f.Count))
	}
}

func (b *Bot) handleClearStore(uid, chatID int64) {
	records, err := b.store.List(uid)
	if err != nil {
		log.WithError(err).Error("list store failed")
		b.reply(chatID, "❌ Storage error.")
		return
	}
	if len(records) == 0 {
		b.reply(chatID, "📂 You have no stored codes.")
		return
	}
	if err := b.store.ClearStore(uid); err != nil {
		log.WithError(err).Error("clear store failed")
		b.reply(chatID, "❌ Storage error, nothing was deleted.")
		return
	}
	b.reply(chatID, "🗑 Your stored codes were deleted.")
}

func (b *Bot) handleStats(uid, chatID int64) {
	stats, err := b.store.Stats(uid)
	if err != nil {
		log.WithError(err).Error("stats failed")
		b.reply(chatID, "❌ Storage error.")
		return
	}
	if len(stats) == 0 {
		b.reply(chatID, "📊 No stored codes.")
		return
	}

	denoms := make([]string, 0, len(stats))
	for d := range stats {
		denoms = append(denoms, d)
	}
	sort.Strings(denoms)

	var sb strings.Builder
	sb.WriteString("📊 *Your Statistics:*\n\n")
	total := 0
	for _, d := range denoms {
		fmt.Fprintf(&sb, "%s: *%d* codes\n", d, stats[d])
		total += stats[d]
	}
	fmt.Fprintf(&sb, "\nTotal saved codes: *%d*", total)
	b.reply(chatID, sb.String())
}

func (b *Bot) handleRemove(uid, chatID int64, arg string) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		b.reply(chatID, "Usage: /remove <code>")
		return
	}

	removed, err := b.store.RemoveOne(uid, arg)
	if err != nil {
		log.WithError(err).Error("remove failed")
		b.reply(chatID, "❌ Storage error.")
		return
	}
	if removed {
		b.reply(chatID, "✔ Code removed.")
	} else {
		b.reply(chatID, "❌ Code not found.")
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	data := cq.Data
	switch {
	case strings.HasPrefix(data, cbDenomPrefix):
		b.handleDenomChoice(cq)
	case strings.HasPrefix(data, cbAdminPrefix):
		b.handleAdminCallback(cq)
	}
}

// handleDenomChoice resolves the caller's entire pending batch under the
// chosen denomination.
func (b *Bot) handleDenomChoice(cq *tgbotapi.CallbackQuery) {
	uid := cq.From.ID
	denom := strings.TrimPrefix(cq.Data, cbDenomPrefix)

	res, err := b.pipe.Resolve(uid, denom)
	if errors.Is(err, pipeline.ErrNoPending) {
		b.answerCallback(cq.ID, "No pending codes.")
		return
	}
	if err != nil {
		log.WithError(err).Error("resolve pending failed")
		b.answerCallback(cq.ID, "Storage error.")
		return
	}

	log.WithFields(log.Fields{"user": uid, "denom": denom, "saved": res.Saved}).
		Info("pending batch resolved")

	b.answerCallback(cq.ID, "")
	if cq.Message != nil {
		edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID,
			fmt.Sprintf("✔ Saved %d codes under %s.", res.Saved, denom))
		if _, err := b.api.Send(edit); err != nil {
			log.WithError(err).Warn("edit message failed")
		}
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.WithError(err).Warn("answer callback failed")
	}
}
