package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramProvider sends alerts to a Telegram chat via a bot.
type TelegramProvider struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// NewTelegramProvider creates a Telegram alert provider. It verifies
// the bot token with the API up front.
func NewTelegramProvider(token string, chatID int64, logger *slog.Logger) (*TelegramProvider, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	logger.Info("Telegram provider ready", "bot", bot.Self.UserName, "chat_id", chatID)
	return &TelegramProvider{bot: bot, chatID: chatID, logger: logger}, nil
}

// Send posts the alert as one message, subject first.
func (t *TelegramProvider) Send(ctx context.Context, subject, body string) error {
	msg := tgbotapi.NewMessage(t.chatID, subject+"\n\n"+body)
	msg.DisableWebPagePreview = true

	return retry.Do(
		func() error {
			if err := ctx.Err(); err != nil {
				return retry.Unrecoverable(err)
			}

			if _, err := t.bot.Send(msg); err != nil {
				t.logger.Warn("Telegram send failed, will retry",
					"chat_id", t.chatID,
					"error", err)
				return err
			}

			t.logger.Info("Telegram alert sent", "chat_id", t.chatID)
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(2*time.Minute),
		retry.MaxJitter(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			t.logger.Info("Retrying Telegram alert send after error", "attempt", n, "error", err)
		}),
	)
}
