package telegram

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/audiorelay/internal/relay"
)

const unknownError = "Unknown error"

// apiResponse is the Bot API envelope.
type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

type sendMessageParams struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// Client implements relay.Platform on top of a Transport.
type Client struct {
	transport Transport
	logger    *slog.Logger
}

var _ relay.Platform = (*Client)(nil)

// NewClient creates a platform client.
func NewClient(transport Transport, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		transport: transport,
		logger:    logger.With("component", "telegram_client"),
	}
}

// SendMessage posts msg to sendMessage as JSON and returns the new
// message id. A non-2xx answer yields a *relay.Rejection carrying the API
// description.
func (c *Client) SendMessage(ctx context.Context, msg relay.TextMessage) (int, error) {
	reply, err := c.transport.PostJSON(ctx, "sendMessage", sendMessageParams{
		ChatID:    msg.ChatID,
		Text:      msg.Text,
		ParseMode: msg.ParseMode,
	})
	if err != nil {
		return 0, err
	}

	if !reply.OK() {
		desc := describe(reply.Body, false)
		c.logger.WarnContext(ctx, "sendMessage rejected", "status", reply.StatusCode, "chat_id", msg.ChatID, "description", desc)
		return 0, &relay.Rejection{StatusCode: reply.StatusCode, Description: desc}
	}

	var env apiResponse[models.Message]
	if err := json.Unmarshal(reply.Body, &env); err != nil {
		// The message was accepted; only the id is lost.
		c.logger.WarnContext(ctx, "Failed to decode sendMessage response", "error", err)
		return 0, nil
	}
	return env.Result.ID, nil
}

// SendAudio uploads the recording to sendAudio as multipart form data.
func (c *Client) SendAudio(ctx context.Context, upload relay.AudioUpload) error {
	reply, err := c.transport.PostMultipart(ctx, "sendAudio", []FormPart{
		{Name: "chat_id", Value: upload.ChatID},
		{Name: "audio", FileName: upload.FileName, ContentType: upload.MIMEType, Data: upload.Data},
		{Name: "caption", Value: upload.Caption},
	})
	if err != nil {
		return err
	}

	if !reply.OK() {
		desc := describe(reply.Body, true)
		c.logger.WarnContext(ctx, "sendAudio rejected",
			"status", reply.StatusCode,
			"chat_id", upload.ChatID,
			"audio_bytes", len(upload.Data),
			"description", desc)
		return &relay.Rejection{StatusCode: reply.StatusCode, Description: desc}
	}
	return nil
}

// describe extracts the API description from body. With rawFallback the
// body text is used when it is not a JSON envelope.
func describe(body []byte, rawFallback bool) string {
	var env apiResponse[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Description != "" {
		return env.Description
	}
	if rawFallback {
		if text := strings.TrimSpace(string(body)); text != "" {
			return text
		}
	}
	return unknownError
}
