package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Prober checks that a bot token is accepted by the Bot API.
type Prober struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewProber creates a go-telegram/bot instance for token without
// contacting the API; Probe performs the actual check.
func NewProber(apiURL, token string, logger *slog.Logger) (*Prober, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_probe")

	b, err := bot.New(token, bot.WithServerURL(apiURL), bot.WithSkipGetMe())
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Prober{bot: b, logger: log}, nil
}

// Probe calls getMe and returns the bot account.
func (p *Prober) Probe(ctx context.Context) (*models.User, error) {
	me, err := p.bot.GetMe(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "Bot token probe failed", "error", err)
		return nil, fmt.Errorf("getMe failed: %w", err)
	}
	p.logger.DebugContext(ctx, "Bot token probe succeeded", "bot_id", me.ID, "bot_username", me.Username)
	return me, nil
}
