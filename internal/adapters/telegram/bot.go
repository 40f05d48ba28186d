// Package telegram is the chat transport: it receives commands, documents
// and plain messages over Telegram long polling and drives the ingestion
// pipeline and storage with them. All replies, inline keyboards and file
// uploads live here; nothing in this package computes code identity or
// touches bbolt directly.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/corey/redeembot/internal/domain/pipeline"
	"github.com/corey/redeembot/internal/ports"
)

// restartDelay is how long the receive loop waits before restarting after a
// transport failure.
const restartDelay = 5 * time.Second

// Options configures a Bot. All fields are required except PollTimeout,
// which falls back to 30 seconds.
type Options struct {
	Token       string
	PollTimeout int // long-poll request length, seconds
	Store       ports.Storage
	Pipeline    *pipeline.Pipeline
	Fetcher     ports.Fetcher
	Extractor   ports.DocExtractor
	ExportDir   string
	// IsAdmin is consulted per update so config reloads take effect
	// without a restart.
	IsAdmin func(id int64) bool
	// FetchTimeout bounds document downloads from Telegram's file API.
	FetchTimeout time.Duration
}

// Bot is the Telegram front-end.
type Bot struct {
	api       *tgbotapi.BotAPI
	store     ports.Storage
	pipe      *pipeline.Pipeline
	fetcher   ports.Fetcher
	extractor ports.DocExtractor
	exportDir string
	isAdmin   func(id int64) bool
	pollWait  int
	fetchWait time.Duration
	dl        *http.Client
}

// New authenticates against the Telegram API and returns a ready Bot.
func New(opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	pollWait := opts.PollTimeout
	if pollWait <= 0 {
		pollWait = 30
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	log.WithField("username", api.Self.UserName).Info("telegram bot authorized")
	return &Bot{
		api:       api,
		store:     opts.Store,
		pipe:      opts.Pipeline,
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		exportDir: opts.ExportDir,
		isAdmin:   opts.IsAdmin,
		pollWait:  pollWait,
		fetchWait: fetchTimeout,
		dl:        &http.Client{Timeout: fetchTimeout},
	}, nil
}

// fetchContext bounds one paste fetch. Independent of the file-download
// client's timeout.
func (b *Bot) fetchContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.fetchWait)
}

// Run receives updates until done is closed. A transport failure or an
// escaped panic restarts the receive loop after a short delay instead of
// terminating — one bad update or outage never takes the bot down.
func (b *Bot) Run(done <-chan struct{}) {
	for {
		b.poll(done)
		select {
		case <-done:
			return
		default:
		}
		log.WithField("delay", restartDelay).Warn("receive loop stopped, restarting")
		time.Sleep(restartDelay)
	}
}

func (b *Bot) poll(done <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("receive loop panicked")
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollWait
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-done:
			b.api.StopReceivingUpdates()
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(upd)
		}
	}
}

// handleUpdate dispatches one update. Errors and panics are scoped to the
// update: they are logged and the loop moves on.
func (b *Bot) handleUpdate(upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("update handler panicked")
		}
	}()

	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(upd.CallbackQuery)
	case upd.Message != nil:
		b.handleMessage(upd.Message)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	uid := msg.From.ID

	if msg.IsCommand() {
		b.handleCommand(uid, msg)
		return
	}

	banned, err := b.store.IsBanned(uid)
	if err != nil {
		log.WithError(err).Error("ban check failed")
		return
	}
	if banned {
		b.reply(msg.Chat.ID, "❌ You are banned.")
		return
	}

	switch {
	case msg.Document != nil:
		b.handleDocument(uid, msg)
	case msg.Text != "":
		b.handleAutoDetect(uid, msg)
	}
}

func (b *Bot) handleCommand(uid int64, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// Admin-only commands are silently ignored for everyone else.
	switch msg.Command() {
	case "ban":
		b.handleBan(uid, chatID, msg.CommandArguments())
		return
	case "unban":
		b.handleUnban(uid, chatID, msg.CommandArguments())
		return
	case "banned":
		b.handleBannedList(uid, chatID)
		return
	case "admin":
		b.handleAdminPanel(uid, chatID)
		return
	case "broadcast":
		b.handleBroadcast(uid, chatID, msg.CommandArguments())
		return
	}

	banned, err := b.store.IsBanned(uid)
	if err != nil {
		log.WithError(err).Error("ban check failed")
		return
	}
	if banned {
		b.reply(chatID, "❌ You are banned.")
		return
	}

	switch msg.Command() {
	case "start":
		b.handleStart(uid, chatID)
	case "help":
		b.reply(chatID, helpText)
	case "w":
		b.handlePaste(uid, chatID, msg.CommandArguments())
	case "getstore":
		b.handleGetStore(uid, chatID)
	case "clearstore":
		b.handleClearStore(uid, chatID)
	case "stats":
		b.handleStats(uid, chatID)
	case "remove":
		b.handleRemove(uid, chatID, msg.CommandArguments())
	}
}

// reply sends a Markdown-formatted message, logging send failures.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat", chatID).Warn("send message failed")
	}
}

// sendDocument uploads a file with a caption, logging failures.
func (b *Bot) sendDocument(chatID int64, path, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		log.WithError(err).WithField("chat", chatID).Warn("send document failed")
	}
}

// downloadFile fetches a Telegram-hosted file by id.
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}
	resp, err := b.dl.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
