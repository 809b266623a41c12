package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot/models"
)

// ProbeTaskName identifies the bot token probe job.
const ProbeTaskName = "telegram_probe"

// Prober checks the bot token against the messaging platform.
type Prober interface {
	Probe(ctx context.Context) (*models.User, error)
}

// ProbeRecorder stores probe outcomes.
type ProbeRecorder interface {
	RecordProbe(botUsername string, err error)
}

// NewProbeTask returns a task that probes the bot token and records the
// outcome. Each attempt is bounded by timeout when it is positive.
func NewProbeTask(prober Prober, recorder ProbeRecorder, timeout time.Duration, log *slog.Logger) TaskFunc {
	log = log.With("task", ProbeTaskName)

	return func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		me, err := prober.Probe(ctx)
		if err != nil {
			recorder.RecordProbe("", err)
			return err
		}

		recorder.RecordProbe(me.Username, nil)
		log.InfoContext(ctx, "Bot token is valid", "bot_id", me.ID, "bot_username", me.Username)
		return nil
	}
}
