package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meal-prep-planner/internal/app"
	"meal-prep-planner/internal/config"
	"meal-prep-planner/internal/logging"
	"meal-prep-planner/internal/planner"
)

// Telegram rejects messages longer than 4096 characters.
const maxMessageLength = 4000

const (
	callbackShopping = "shop"
	callbackPublish  = "publish"
)

// sender is the part of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot answers Telegram updates using the meal-prep App.
type Bot struct {
	api sender
	app *app.App
	cfg *config.Config
	wg  sync.WaitGroup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logging.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logging.Info().Str("response", resp.Description).Msg("webhook set")

	return newBot(cfg, application, api), nil
}

func newBot(cfg *config.Config, application *app.App, api sender) *Bot {
	return &Bot{api: api, app: application, cfg: cfg}
}

// RegisterHandlers registers the webhook, health and Prometheus endpoints.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
}

// Wait blocks until every in-flight update has been handled.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logging.Warn().Err(err).Msg("failed to parse update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		b.handleUpdate(ctx, update)
	}()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
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
	if !b.cfg.IsAllowedUser(from.ID) {
		logging.Warn().Int64("user_id", from.ID).Str("username", from.UserName).Msg("unauthorized access attempt")
		return false
	}
	return true
}

func owner(from *tgbotapi.User) string {
	return fmt.Sprintf("tg:%d", from.ID)
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !msg.IsCommand() {
		text := strings.TrimSpace(msg.Text)
		if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
			b.handleClipperRequest(ctx, msg)
			return
		}
		b.reply(chatID, "Send /help to see what I can do.", nil)
		return
	}

	user := owner(msg.From)
	args := strings.TrimSpace(msg.CommandArguments())
	logging.Debug().Str("command", msg.Command()).Str("owner", user).Msg("handling command")

	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, helpText, nil)
	case "pantry":
		b.handlePantry(ctx, chatID, user)
	case "add":
		n, err := b.app.AddToPantry(ctx, user, args)
		if err != nil {
			b.replyError(chatID, "Usage: /add eggs, rice, spinach", err)
			return
		}
		b.reply(chatID, fmt.Sprintf("✅ Added %d new item(s) to your pantry.", n), nil)
	case "remove":
		if args == "" {
			b.reply(chatID, "Usage: /remove eggs", nil)
			return
		}
		removed, err := b.app.RemoveFromPantry(ctx, user, args)
		if err != nil {
			b.replyError(chatID, "Could not update your pantry", err)
			return
		}
		if !removed {
			b.reply(chatID, fmt.Sprintf("%s is not in your pantry.", escape(args)), nil)
			return
		}
		b.reply(chatID, fmt.Sprintf("🗑 Removed %s.", escape(args)), nil)
	case "clear":
		n, err := b.app.ClearPantry(ctx, user)
		if err != nil {
			b.replyError(chatID, "Could not clear your pantry", err)
			return
		}
		b.reply(chatID, fmt.Sprintf("🗑 Removed %d item(s).", n), nil)
	case "cook":
		b.handleMatches(ctx, chatID, user, 0, true)
	case "almost":
		maxMissing, err := parseIntArg(args, 3)
		if err != nil {
			b.reply(chatID, "Usage: /almost 2", nil)
			return
		}
		b.handleMatches(ctx, chatID, user, maxMissing, false)
	case "recipe":
		b.handleRecipe(ctx, chatID, user, args)
	case "plan", "pantryplan":
		b.handlePlan(ctx, chatID, user, args, msg.Command() == "pantryplan")
	case "shopping":
		b.sendShopping(ctx, chatID, user, "")
	case "metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.reply(chatID, "⛔ *Access Denied*: Admin only.", nil)
			return
		}
		b.handleMetricsCommand(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Send /help for the list.", nil)
	}
}

const helpText = `🥗 *Meal Prep Planner*

/pantry - show your pantry
/add eggs, rice - add items
/remove eggs - remove an item
/clear - empty your pantry
/cook - recipes you can make now
/almost 2 - recipes missing at most 2 items
/recipe d001 - recipe details
/plan 7 - plan a week of dinners
/plan 7 all - plan every meal
/pantryplan 5 - plan from what you have
/shopping - shopping list for your latest plan

Send a recipe URL to import it.`

func (b *Bot) handlePantry(ctx context.Context, chatID int64, user string) {
	p, err := b.app.Pantry(ctx, user)
	if err != nil {
		b.replyError(chatID, "Could not load your pantry", err)
		return
	}
	b.reply(chatID, formatPantryMarkdown(p.Items()), nil)
}

func (b *Bot) handleMatches(ctx context.Context, chatID int64, user string, maxMissing int, perfectOnly bool) {
	m, err := b.app.FindMatches(ctx, user, maxMissing)
	if err != nil {
		b.replyError(chatID, "Could not match recipes", err)
		return
	}
	if perfectOnly {
		b.reply(chatID, formatMatchesMarkdown("🍳 *Recipes you can make now*", m.Perfect), nil)
		return
	}
	title := fmt.Sprintf("🛒 *Missing at most %d ingredient(s)*", m.MaxMissing)
	b.reply(chatID, formatMatchesMarkdown(title, m.Almost), nil)
}

func (b *Bot) handleRecipe(ctx context.Context, chatID int64, user, id string) {
	if id == "" {
		b.reply(chatID, "Usage: /recipe <id>", nil)
		return
	}
	detail, err := b.app.ShowRecipe(ctx, user, id)
	if err != nil {
		b.replyError(chatID, "Could not load the recipe", err)
		return
	}
	if detail == nil {
		b.reply(chatID, fmt.Sprintf("No recipe with id %s.", escape(id)), nil)
		return
	}
	b.reply(chatID, formatRecipeMarkdown(detail), nil)
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64, user, args string, fromPantry bool) {
	days, allMeals, err := parsePlanArgs(args)
	if err != nil {
		b.reply(chatID, "Usage: /plan 7, or /plan 7 all for every meal (1-14 days)", nil)
		return
	}

	opts := planner.Options{Days: days, Variety: true, PreferMealPrep: true}
	if allMeals {
		opts.Breakfast, opts.Lunch, opts.Dinner, opts.Snack = true, true, true, true
	}
	res, err := b.app.GeneratePlan(ctx, user, app.PlanRequest{Options: opts, FromPantry: fromPantry})
	if err != nil {
		b.replyError(chatID, "Error generating plan", err)
		return
	}

	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🛒 Shopping list", callbackShopping+"|"+res.Plan.ID),
	}
	if b.cfg.RequireGhostAdmin() == nil {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("📤 Publish", callbackPublish+"|"+res.Plan.ID))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(row)
	b.reply(chatID, formatPlanMarkdown(res.Plan), &keyboard)
}

func (b *Bot) sendShopping(ctx context.Context, chatID int64, user, planID string) {
	res, err := b.app.ShoppingForPlan(ctx, user, planID, true)
	if err != nil {
		b.replyError(chatID, "Could not build the shopping list", err)
		return
	}
	b.reply(chatID, formatShoppingMarkdown(res.List), nil)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logging.Warn().Err(err).Msg("failed to answer callback")
	}
	if query.Message == nil {
		return
	}

	action, planID, ok := strings.Cut(query.Data, "|")
	if !ok {
		return
	}
	chatID := query.Message.Chat.ID
	user := owner(query.From)

	switch action {
	case callbackShopping:
		b.sendShopping(ctx, chatID, user, planID)
	case callbackPublish:
		post, err := b.app.PublishPlan(ctx, user, planID)
		if err != nil {
			b.replyError(chatID, "Error publishing plan", err)
			return
		}
		b.reply(chatID, fmt.Sprintf("📤 Draft created: *%s*", escape(post.Title)), nil)
	}
}

func (b *Bot) handleClipperRequest(ctx context.Context, msg *tgbotapi.Message) {
	sent, err := b.api.Send(markdownMessage(msg.Chat.ID, "✂️ *Clipping recipe...*"))
	if err != nil {
		logging.Warn().Err(err).Msg("failed to send initial reply")
		return
	}

	var finalText string
	rec, err := b.app.ImportURL(ctx, strings.TrimSpace(msg.Text))
	if err != nil {
		logging.Error().Err(err).Str("url", msg.Text).Msg("error clipping recipe")
		finalText = fmt.Sprintf("❌ *Error clipping recipe:*\n%s", escape(err.Error()))
	} else {
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*ID:* `%s`\n*Ingredients:* %d",
			escape(rec.Name), rec.ID, len(rec.Ingredients))
	}
	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, finalText)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		logging.Warn().Err(err).Msg("failed to edit reply")
	}
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	usage, err := b.app.Usage(ctx, 7)
	if err != nil {
		b.replyError(chatID, "Error fetching metrics", err)
		return
	}
	health := b.app.Health()

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d execs, %d items, %.0f ms avg\n", d.Date, d.Executions, d.TotalItems, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.reply(chatID, sb.String(), nil)
}

func markdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

// reply sends text, split on line boundaries when it is too long. The
// keyboard is attached to the last part.
func (b *Bot) reply(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	parts := splitMessage(text, maxMessageLength)
	for i, part := range parts {
		msg := markdownMessage(chatID, part)
		if keyboard != nil && i == len(parts)-1 {
			msg.ReplyMarkup = keyboard
		}
		if _, err := b.api.Send(msg); err != nil {
			logging.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
		}
	}
}

func (b *Bot) replyError(chatID int64, prefix string, err error) {
	logging.Warn().Err(err).Int64("chat_id", chatID).Msg(prefix)
	b.reply(chatID, fmt.Sprintf("❌ *%s:* %s", prefix, escape(err.Error())), nil)
}

func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if cur.Len()+len(line) > limit && cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

func parseIntArg(args string, def int) (int, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid number %q", fields[0])
	}
	return n, nil
}

// parsePlanArgs reads "[days] [all]" in either order.
func parsePlanArgs(args string) (days int, allMeals bool, err error) {
	days = app.DefaultDays
	for _, f := range strings.Fields(args) {
		if strings.EqualFold(f, "all") {
			allMeals = true
			continue
		}
		n, convErr := strconv.Atoi(f)
		if convErr != nil || n < app.MinDays || n > app.MaxDays {
			return 0, false, fmt.Errorf("invalid day count %q", f)
		}
		days = n
	}
	return days, allMeals, nil
}
