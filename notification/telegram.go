// Package notification provides implementations for various notification services
package notification

import (
	"fmt"
	"strings"
	"time"

	"slices"

	"github.com/raykavin/pairwatch/core"
	tb "gopkg.in/tucnak/telebot.v2"
)

const (
	pollingTimeout = 10 * time.Second
)

// Status exposes the running bot state queried by chat commands.
type Status interface {
	LastSummary() (core.CycleSummary, bool)
	TrackedCount() int
}

// Telegram implements the core.NotifierWithStart interface
type Telegram struct {
	settings    *core.Settings
	status      Status
	defaultMenu *tb.ReplyMarkup
	client      *tb.Bot
	log         core.Logger
}

// Option is a function that configures a telegram instance
type Option func(telegram *Telegram)

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(settings *core.Settings, status Status, log core.Logger, options ...Option) (
	core.NotifierWithStart,
	error,
) {
	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}
	poller := &tb.LongPoller{Timeout: pollingTimeout}
	userMiddleware := newAuthMiddleware(poller, settings, log)

	client, err := initializeBotClient(settings, userMiddleware)
	if err != nil {
		return nil, err
	}

	setupKeyboard(menu)
	if err := setupCommands(client); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	bot := &Telegram{
		settings:    settings,
		status:      status,
		client:      client,
		defaultMenu: menu,
		log:         log,
	}

	// Apply custom options if provided
	for _, option := range options {
		option(bot)
	}

	registerHandlers(client, bot)

	return bot, nil
}

// initializeBotClient creates and configures the Telegram bot client
func initializeBotClient(settings *core.Settings, middleware *tb.MiddlewarePoller) (*tb.Bot, error) {
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Telegram.Token,
		Poller:    middleware,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return client, nil
}

// newAuthMiddleware creates a middleware to validate authorized users
func newAuthMiddleware(poller *tb.LongPoller, settings *core.Settings, log core.Logger) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("message or sender is nil ", u)
			return false
		}

		if slices.Contains(settings.Telegram.Users, u.Message.Sender.ID) {
			return true
		}

		log.Error("unauthorized user ", u.Message.Sender.ID)
		return false
	})
}

// setupKeyboard configures the reply keyboard layout
func setupKeyboard(menu *tb.ReplyMarkup) {
	var (
		statusBtn = menu.Text("/status")
		countBtn  = menu.Text("/count")
		helpBtn   = menu.Text("/help")
	)

	menu.Reply(
		menu.Row(statusBtn, countBtn, helpBtn),
	)
}

// setupCommands configures available bot commands
func setupCommands(client *tb.Bot) error {
	return client.SetCommands([]tb.Command{
		{Text: "/help", Description: "Display help instructions"},
		{Text: "/status", Description: "Last poll cycle summary"},
		{Text: "/count", Description: "Number of tracked pairs"},
	})
}

// registerHandlers registers all command handlers
func registerHandlers(client *tb.Bot, bot *Telegram) {
	client.Handle("/help", bot.HelpHandle)
	client.Handle("/status", bot.StatusHandle)
	client.Handle("/count", bot.CountHandle)
}

// Start begins the Telegram bot and notifies all authorized users
func (t *Telegram) Start() {
	go t.client.Start()
	t.sendMessageWithOptions("Pair watcher initialized.", t.defaultMenu)
}

// Notification methods
// -------------------

// Notify sends a message to all authorized users
func (t *Telegram) Notify(text string) {
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: user}, text)
		if err != nil {
			t.log.WithError(err).Error("failed to send notification")
		}
	}
}

// OnPair notifies users about a freshly discovered pair. It returns true
// when the message reached at least one user.
func (t *Telegram) OnPair(pair core.Pair, seq int) bool {
	message := formatPairMessage(pair)

	delivered := false
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: user}, message)
		if err != nil {
			t.log.WithError(err).WithField("user", user).Error("failed to send pair notification")
			continue
		}
		delivered = true
	}

	return delivered
}

// OnError notifies users about errors
func (t *Telegram) OnError(err error) {
	var sb strings.Builder
	sb.WriteString("🛑 ERROR\n")
	sb.WriteString("-----\n")
	sb.WriteString(err.Error())

	t.Notify(sb.String())
}

// sendMessageWithOptions sends a message to all authorized users with additional options
func (t *Telegram) sendMessageWithOptions(text string, options ...any) {
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: user}, text, options...)
		if err != nil {
			t.log.WithError(err).Error("failed to send notification with options")
		}
	}
}

// sendMessage sends a message to a specific user
func (t *Telegram) sendMessage(to *tb.User, text string, options ...any) {
	_, err := t.client.Send(to, text, options...)
	if err != nil {
		t.log.WithError(err).Error("failed to send message")
	}
}

// Command handlers
// ---------------

// HelpHandle displays available commands
func (t *Telegram) HelpHandle(m *tb.Message) {
	commands, err := t.client.GetCommands()
	if err != nil {
		t.log.WithError(err).Error("failed to get commands")
		t.OnError(err)
		return
	}

	lines := make([]string, 0, len(commands))
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("/%s - %s", command.Text, command.Description))
	}

	t.sendMessage(m.Sender, strings.Join(lines, "\n"))
}

// StatusHandle shows the last cycle summary
func (t *Telegram) StatusHandle(m *tb.Message) {
	summary, ok := t.status.LastSummary()
	if !ok {
		t.sendMessage(m.Sender, "No cycle completed yet.")
		return
	}

	t.sendMessage(m.Sender, fmt.Sprintf("*LAST CYCLE*\n`%s`", summary.String()))
}

// CountHandle shows the number of currently tracked pairs
func (t *Telegram) CountHandle(m *tb.Message) {
	t.sendMessage(m.Sender, fmt.Sprintf("Tracked pairs: `%d`", t.status.TrackedCount()))
}

// formatPairMessage creates the markdown notification body for a pair
func formatPairMessage(pair core.Pair) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🆕 NEW PAIR - %s\n", pair.Symbol())
	sb.WriteString("-----\n")
	fmt.Fprintf(&sb, "Dex: `%s` (%s)\n", pair.DexID, pair.ChainID)

	if pair.PriceUSD > 0 {
		fmt.Fprintf(&sb, "Price: `$%.8f`\n", pair.PriceUSD)
	}

	fmt.Fprintf(&sb, "Liquidity: `$%.2f`\n", pair.LiquidityUSD)

	if pair.VolumeH24 > 0 {
		fmt.Fprintf(&sb, "Volume 24h: `$%.2f`\n", pair.VolumeH24)
	}

	if pair.HasCreatedAt() {
		fmt.Fprintf(&sb, "Age: `%s`\n", time.Since(pair.CreatedAt).Round(time.Second))
	}

	fmt.Fprintf(&sb, "Address: `%s`\n", pair.Address)

	if pair.URL != "" {
		sb.WriteString(pair.URL)
	}

	return sb.String()
}
