package telegram

import (
	"context"
	"log/slog"

	"luna/app/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const pollTimeout = 30

// Client wraps the Bot API: outbound delivery plus the long-poll update
// stream. All policy (auth, routing) lives in the services.
type Client struct {
	bot *tgbotapi.BotAPI
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, oops.Code("gateway").Errorf("failed to connect to telegram: %w", err)
	}

	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	return &Client{bot: bot}, nil
}

func (c *Client) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := c.bot.Send(msg); err != nil {
		return oops.Code("gateway").Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

// Typing shows the typing indicator; failures are cosmetic and ignored.
func (c *Client) Typing(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = c.bot.Request(action)
}

// Updates returns the long-poll channel. Polling stops when ctx is done.
func (c *Client) Updates(ctx context.Context) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := c.bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		c.bot.StopReceivingUpdates()
	}()

	return updates
}
