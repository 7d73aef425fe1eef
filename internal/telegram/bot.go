package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"banquet-planner/internal/app"
	"banquet-planner/internal/beo"
	"banquet-planner/internal/config"
	"banquet-planner/internal/recipe"
	"banquet-planner/internal/report"
)

const (
	// pendingOrderTTL is how long an order preview can be confirmed.
	pendingOrderTTL = 30 * time.Minute

	// Telegram rejects messages longer than 4096 characters.
	maxMessageLen = 4000

	updateTimeout = 2 * time.Minute
)

const helpText = "🍽 *Banquet Planner*\n\n" +
	"Send an order like:\n```\nEvent: Harvest Gala\nDate: 2026-11-07\nGuests: 120\nNotes: two vegan plates\nCaesar Salad: 12\nSeared Salmon x 10\n```\n" +
	"Send a recipe URL to import it.\n\n/recipes lists the catalog."

// OrderService is the part of the application the bot drives.
type OrderService interface {
	ShoppingList(ctx context.Context, ev beo.Event) (*beo.Order, error)
	GenerateOrder(ctx context.Context, ev beo.Event, publish bool) (*app.OrderResult, error)
	RecipeNames(ctx context.Context) ([]string, error)
	ClipURL(ctx context.Context, url string) (*recipe.Recipe, error)
	UsageReport(ctx context.Context, days int) (app.Usage, error)
	CanPublish() bool
}

// messenger is satisfied by *tgbotapi.BotAPI.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API and the order pipeline.
type Bot struct {
	api      messenger
	svc      OrderService
	sessions *SessionRepository
	cfg      *config.Config
	logger   *zap.Logger
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, svc OrderService, sessions *SessionRepository, logger *zap.Logger) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized telegram bot", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("description", resp.Description))

	return newBot(api, cfg, svc, sessions, logger), nil
}

func newBot(api messenger, cfg *config.Config, svc OrderService, sessions *SessionRepository, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, svc: svc, sessions: sessions, cfg: cfg, logger: logger}
}

// WebhookHandler acknowledges Telegram updates immediately and processes
// them in the background.
func (b *Bot) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			b.logger.Warn("error parsing update", zap.Error(err))
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
			defer cancel()
			b.HandleUpdate(ctx, update)
		}()
	}
}

// HandleUpdate processes one update from an allowed user.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if b.isAllowed(update.CallbackQuery.From) {
			b.handleCallbackQuery(ctx, update.CallbackQuery)
		}
	case update.Message != nil:
		if b.isAllowed(update.Message.From) {
			b.processMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) isAllowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if from.ID == id {
			return true
		}
	}
	b.logger.Warn("unauthorized access attempt", zap.Int64("user_id", from.ID), zap.String("username", from.UserName))
	return false
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/start" || text == "/help":
		b.reply(msg.Chat.ID, helpText)
	case text == "/recipes":
		b.handleRecipesCommand(ctx, msg.Chat.ID)
	case text == "/metrics":
		b.handleMetricsRequest(ctx, msg)
	case strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://"):
		b.handleClipperRequest(ctx, msg)
	default:
		b.handleOrderRequest(ctx, msg)
	}
}

func (b *Bot) handleRecipesCommand(ctx context.Context, chatID int64) {
	names, err := b.svc.RecipeNames(ctx)
	if err != nil {
		b.logger.Error("failed to list recipes", zap.Error(err))
		b.reply(chatID, "❌ Error listing recipes.")
		return
	}
	if len(names) == 0 {
		b.reply(chatID, "📖 The catalog is empty.")
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📖 *Recipes* (%d)\n\n", len(names)))
	for _, n := range names {
		sb.WriteString("• " + n + "\n")
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	usage, err := b.svc.UsageReport(ctx, 7)
	if err != nil {
		b.logger.Error("failed to fetch metrics", zap.Error(err))
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.reply(msg.Chat.ID, formatUsage(usage))
}

func formatUsage(usage app.Usage) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Activity*\n")
	if len(usage.Daily) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage.Daily {
		sb.WriteString(fmt.Sprintf("• *%s*: %d runs, %d items, %d tokens\n",
			d.Date, d.TotalExecution, d.TotalItems, d.TotalPrompt+d.TotalCompletion))
	}

	h := usage.Health
	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• Recipes: %d\n", usage.Count))
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", h.AllocMB, h.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", h.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", h.Uptime))
	sb.WriteString(fmt.Sprintf("• Reports: %d files, %s\n", h.ReportFiles, h.ReportDiskSize))
	return sb.String()
}

func (b *Bot) handleClipperRequest(ctx context.Context, msg *tgbotapi.Message) {
	sent, err := b.api.Send(markdown(tgbotapi.NewMessage(msg.Chat.ID, "✂️ *Clipping recipe...*")))
	if err != nil {
		b.logger.Error("failed to send initial reply", zap.Error(err))
		return
	}

	var finalText string
	rec, err := b.svc.ClipURL(ctx, msg.Text)
	if err != nil {
		b.logger.Warn("error clipping recipe", zap.String("url", msg.Text), zap.Error(err))
		finalText = errorText("Error clipping recipe", err)
	} else {
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Name:* %s\n*Ingredients:* %d", rec.Name, len(rec.Ingredients))
		if len(rec.Allergens) > 0 {
			finalText += "\n*Allergens:* " + strings.Join(rec.Allergens, ", ")
		}
	}
	b.edit(msg.Chat.ID, sent.MessageID, finalText)
}

func (b *Bot) handleOrderRequest(ctx context.Context, msg *tgbotapi.Message) {
	ev, err := parseOrderMessage(msg.Text)
	if err != nil {
		b.reply(msg.Chat.ID, errorText("Could not read order", err)+"\n\n"+helpText)
		return
	}

	order, err := b.svc.ShoppingList(ctx, ev)
	if err != nil {
		b.reply(msg.Chat.ID, errorText("Could not build order", err))
		return
	}

	id, err := b.sessions.Create(ctx, msg.From.ID, SessionPendingOrder, StateAwaitingConfirmation,
		SessionContextData{Event: ev}, pendingOrderTTL)
	if err != nil {
		b.logger.Error("failed to create session", zap.Error(err))
		b.reply(msg.Chat.ID, "❌ Error saving your order. Please try again.")
		return
	}

	chunks := splitMessage(report.Text(order), maxMessageLen-8)
	for i, chunk := range chunks {
		m := markdown(tgbotapi.NewMessage(msg.Chat.ID, "```\n"+chunk+"\n```"))
		if i == len(chunks)-1 {
			m.ReplyMarkup = b.confirmKeyboard(id)
		}
		if _, err := b.api.Send(m); err != nil {
			b.logger.Error("failed to send order preview", zap.Error(err))
			return
		}
	}
}

func (b *Bot) confirmKeyboard(sessionID int64) tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatInt(sessionID, 10)
	row := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💾 Save", "save|"+id))
	if b.svc.CanPublish() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("📰 Publish Draft", "publish|"+id))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑 Discard", "discard|"+id))
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}
	if query.Message == nil {
		return
	}
	chatID, messageID := query.Message.Chat.ID, query.Message.MessageID

	action, rawID, ok := strings.Cut(query.Data, "|")
	sessionID, err := strconv.ParseInt(rawID, 10, 64)
	if !ok || err != nil {
		return
	}

	session, err := b.sessions.Get(ctx, sessionID, query.From.ID)
	if err != nil {
		b.logger.Error("failed to load session", zap.Error(err))
		b.edit(chatID, messageID, "❌ Error loading order.")
		return
	}
	if session == nil {
		b.edit(chatID, messageID, "⌛ This order has expired. Please send it again.")
		return
	}
	if err := b.sessions.Delete(ctx, session.ID); err != nil {
		b.logger.Warn("failed to delete session", zap.Error(err))
	}

	if action == "discard" {
		b.edit(chatID, messageID, "🗑 Order discarded.")
		return
	}

	data, err := session.GetContextData()
	if err != nil {
		b.logger.Error("failed to decode session", zap.Int64("session_id", session.ID), zap.Error(err))
		b.edit(chatID, messageID, "❌ Error loading order.")
		return
	}

	res, err := b.svc.GenerateOrder(ctx, data.Event, action == "publish")
	if err != nil {
		b.edit(chatID, messageID, errorText("Error generating order", err))
		return
	}

	text := fmt.Sprintf("✅ *Order Saved!*\n\n*Event:* %s\n*Report:* `%s`", data.Event.Name, res.ReportPath)
	if res.Post != nil {
		text += fmt.Sprintf("\n*Ghost draft:* %s", res.Post.ID)
		if res.Post.URL != "" {
			text += " " + res.Post.URL
		}
	}
	b.edit(chatID, messageID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(markdown(tgbotapi.NewMessage(chatID, text))); err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	e.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(e); err != nil {
		b.logger.Warn("failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func markdown(m tgbotapi.MessageConfig) tgbotapi.MessageConfig {
	m.ParseMode = tgbotapi.ModeMarkdown
	return m
}

func errorText(title string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *%s:*\n```\n%s\n```", title, safeErr)
}

// splitMessage breaks text at line boundaries into chunks of at most limit
// bytes. A single longer line is cut.
func splitMessage(text string, limit int) []string {
	var chunks []string
	var cur strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 || len(chunks) == 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
