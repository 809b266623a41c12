// Package server exposes the relay over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/edgard/audiorelay/internal/errors"
	"github.com/edgard/audiorelay/internal/logger"
	"github.com/edgard/audiorelay/internal/relay"
)

// CORS header values sent when cross-origin access is enabled.
const (
	corsAllowMethods = "GET,OPTIONS,PATCH,DELETE,POST,PUT"
	corsAllowHeaders = "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version, X-Request-ID"
)

// Relayer runs the relay pipeline for one decoded request.
type Relayer interface {
	Relay(ctx context.Context, req relay.Request) relay.Result
}

// Response is the JSON body returned to callers.
type Response struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	MessageID int       `json:"messageId,omitempty"`
	Delivery  *Delivery `json:"delivery,omitempty"`
}

// Delivery reports each outbound step separately.
type Delivery struct {
	Text  relay.StepStatus `json:"text"`
	Audio relay.StepStatus `json:"audio"`
}

// Reply is a transport-neutral HTTP answer. Body is empty for preflight
// acknowledgements.
type Reply struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Handler validates inbound requests and hands them to a Relayer.
type Handler struct {
	relayer      Relayer
	cors         bool
	maxBodyBytes int64
	logger       *slog.Logger
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	CORS         bool
	MaxBodyBytes int64
}

// NewHandler creates a relay endpoint handler.
func NewHandler(relayer Relayer, opts HandlerOptions, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		relayer:      relayer,
		cors:         opts.CORS,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       log.With("component", "relay_handler"),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reply := h.Process(r.Context(), r.Method, r.Body)
	writeReply(w, reply)
}

// Process handles one request given its method and body. It never reads
// the body of a rejected method.
func (h *Handler) Process(ctx context.Context, method string, body io.Reader) Reply {
	if h.cors && method == http.MethodOptions {
		return Reply{Status: http.StatusOK, Headers: h.headers(false)}
	}

	if method != http.MethodPost {
		return h.errorReply(ctx, errors.NewMethodError("Method not allowed"), nil)
	}

	req, err := h.decode(body)
	if err != nil {
		return h.errorReply(ctx, err, nil)
	}

	res := h.relayer.Relay(ctx, req)
	delivery := &Delivery{Text: res.Text, Audio: res.Audio}
	if res.Err != nil {
		return h.errorReply(ctx, res.Err, delivery)
	}

	return h.jsonReply(http.StatusOK, Response{
		Success:   true,
		Message:   relay.SuccessMessage,
		MessageID: res.MessageID,
		Delivery:  delivery,
	})
}

func (h *Handler) decode(body io.Reader) (relay.Request, error) {
	var req relay.Request
	if body == nil {
		return req, errors.NewInputError("Invalid request body", nil)
	}

	data, err := io.ReadAll(io.LimitReader(body, h.maxBodyBytes+1))
	if err != nil {
		return req, errors.NewInputError("Failed to read request body", err)
	}
	if int64(len(data)) > h.maxBodyBytes {
		return req, errors.NewInputError("Request body too large", nil)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, errors.NewInputError("Invalid request body", err)
	}
	return req, nil
}

// errorReply reports err. A nil delivery means neither outbound step ran.
func (h *Handler) errorReply(ctx context.Context, err error, delivery *Delivery) Reply {
	if delivery == nil {
		delivery = &Delivery{Text: relay.StepSkipped, Audio: relay.StepSkipped}
	}
	status := errors.HTTPStatus(err)
	h.logger.DebugContext(ctx, "Request failed",
		"request_id", logger.RequestID(ctx),
		"status", status,
		"code", errors.Code(err),
		"error", err)

	return h.jsonReply(status, Response{
		Success:  false,
		Error:    err.Error(),
		Delivery: delivery,
	})
}

func (h *Handler) jsonReply(status int, resp Response) Reply {
	body, err := json.Marshal(resp)
	if err != nil {
		// Response holds only strings and ints.
		h.logger.Error("Failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body = []byte(`{"success":false,"error":"internal error"}`)
	}
	return Reply{Status: status, Headers: h.headers(true), Body: body}
}

func (h *Handler) headers(withJSON bool) http.Header {
	hdr := make(http.Header)
	if withJSON {
		hdr.Set("Content-Type", "application/json")
	}
	if h.cors {
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", corsAllowMethods)
		hdr.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		hdr.Set("Access-Control-Allow-Credentials", "true")
	}
	return hdr
}

func writeReply(w http.ResponseWriter, reply Reply) {
	for key, values := range reply.Headers {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(reply.Status)
	if len(reply.Body) > 0 {
		w.Write(reply.Body)
	}
}
