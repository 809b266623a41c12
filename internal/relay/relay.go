// Package relay forwards a recording and its notification text to a
// messaging platform in two ordered steps: the text first, then the audio.
package relay

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/edgard/audiorelay/internal/errors"
	"github.com/edgard/audiorelay/internal/logger"
)

// ParseModeHTML is the rich text mode used for the notification text.
const ParseModeHTML = "HTML"

// SuccessMessage is reported to the caller when both steps succeed.
const SuccessMessage = "Recording sent to Telegram"

// TextMessage is the first outbound call.
type TextMessage struct {
	ChatID    string
	Text      string
	ParseMode string
}

// AudioUpload is the second outbound call.
type AudioUpload struct {
	ChatID   string
	Data     []byte
	FileName string
	MIMEType string
	Caption  string
}

// Platform delivers messages to the destination chat.
type Platform interface {
	// SendMessage returns the platform-assigned message id, or 0 if the
	// platform did not report one.
	SendMessage(ctx context.Context, msg TextMessage) (int, error)
	SendAudio(ctx context.Context, upload AudioUpload) error
}

// Rejection is returned by a Platform when the remote API answered with a
// non-success status. Any other error is treated as a transport failure.
type Rejection struct {
	StatusCode  int
	Description string
}

func (r *Rejection) Error() string {
	return r.Description
}

// Credentials identify the bot and the destination chat.
type Credentials struct {
	BotToken string
	ChatID   string
}

func (c Credentials) complete() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// Service runs the relay pipeline. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	creds    Credentials
	platform Platform
	logger   *slog.Logger
}

// NewService creates a relay bound to creds and platform.
func NewService(creds Credentials, platform Platform, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		creds:    creds,
		platform: platform,
		logger:   logger.With("component", "relay"),
	}
}

// Relay validates req and delivers it. Validation failures make no
// outbound calls; the audio step only runs after the text step succeeded.
func (s *Service) Relay(ctx context.Context, req Request) Result {
	log := s.logger.With("request_id", logger.RequestID(ctx), "chat_id", s.creds.ChatID)
	log.InfoContext(ctx, "Relay request received",
		"file_name", req.FileName,
		"has_student_info", req.StudentInfo != nil,
	)

	res := Result{Text: StepSkipped, Audio: StepSkipped}

	if err := req.checkRequired(); err != nil {
		log.WarnContext(ctx, "Rejected relay request", "error", err)
		return res.fail(err)
	}

	if !s.creds.complete() {
		err := errors.NewConfigError("Telegram credentials not configured", nil)
		log.ErrorContext(ctx, "Relay is misconfigured", "error", err)
		return res.fail(err)
	}

	audio, err := decodeAudio(req.Audio)
	if err != nil {
		log.WarnContext(ctx, "Rejected relay request", "error", err)
		return res.fail(err)
	}

	format := FormatterFor(req)

	messageID, err := s.platform.SendMessage(ctx, TextMessage{
		ChatID:    s.creds.ChatID,
		Text:      format.Text(req),
		ParseMode: ParseModeHTML,
	})
	if err != nil {
		res.Text = StepFailed
		err = classify(err, "Failed to send text message", errors.NewUpstreamTextError)
		log.ErrorContext(ctx, "Text delivery failed", "error", err)
		return res.fail(err)
	}
	res.Text = StepSent
	res.MessageID = messageID
	log.DebugContext(ctx, "Text delivered", "message_id", messageID)

	err = s.platform.SendAudio(ctx, AudioUpload{
		ChatID:   s.creds.ChatID,
		Data:     audio,
		FileName: req.attachmentName(),
		MIMEType: AudioMIMEType,
		Caption:  format.Caption(req),
	})
	if err != nil {
		res.Audio = StepFailed
		err = classify(err, "Failed to send audio", errors.NewUpstreamAudioError)
		log.ErrorContext(ctx, "Audio delivery failed after text was delivered", "error", err, "message_id", messageID)
		return res.fail(err)
	}
	res.Audio = StepSent

	log.InfoContext(ctx, "Recording relayed", "message_id", messageID, "audio_bytes", len(audio))
	res.Success = true
	return res
}

// classify wraps a platform error as an upstream rejection or a transport
// failure.
func classify(err error, message string, upstream func(string, error) error) error {
	var rejection *Rejection
	if stderrors.As(err, &rejection) {
		return upstream(message, rejection)
	}
	return errors.NewTransportError(message, err)
}
