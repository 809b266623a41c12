// Package serverless adapts the relay endpoint to AWS Lambda behind an
// API Gateway proxy integration.
package serverless

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/edgard/audiorelay/internal/logger"
	"github.com/edgard/audiorelay/internal/server"
)

// Processor is the transport-neutral relay endpoint.
type Processor interface {
	Process(ctx context.Context, method string, body io.Reader) server.Reply
}

// Handler serves API Gateway proxy events.
type Handler struct {
	processor Processor
	logger    *slog.Logger
}

// NewHandler creates a Lambda handler around processor.
func NewHandler(processor Processor, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{processor: processor, logger: log.With("component", "lambda_handler")}
}

// Handle converts the proxy event, runs it through the processor, and
// converts the reply back. Errors are always reported in the response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.RequestContext.RequestID
	if id == "" {
		id = uuid.New().String()
	}
	ctx = logger.WithRequestID(ctx, id)
	log := h.logger.With("request_id", id, "method", req.HTTPMethod, "path", req.Path)
	log.DebugContext(ctx, "Processing proxy event")

	// Decoding is deferred to the first read so rejected methods and
	// preflights never touch the body.
	var body io.Reader = strings.NewReader(req.Body)
	if req.IsBase64Encoded {
		body = base64.NewDecoder(base64.StdEncoding, body)
	}

	reply := h.processor.Process(ctx, strings.ToUpper(req.HTTPMethod), body)
	resp := toProxyResponse(reply)
	resp.Headers[logger.RequestIDHeader] = id
	resp.MultiValueHeaders[logger.RequestIDHeader] = []string{id}

	log.InfoContext(ctx, "Finished processing proxy event", "status", reply.Status)
	return resp, nil
}

func toProxyResponse(reply server.Reply) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode:        reply.Status,
		Headers:           make(map[string]string, len(reply.Headers)),
		MultiValueHeaders: make(map[string][]string, len(reply.Headers)),
		Body:              string(reply.Body),
	}
	for key, values := range reply.Headers {
		if len(values) == 0 {
			continue
		}
		resp.Headers[key] = values[0]
		resp.MultiValueHeaders[key] = values
	}
	return resp
}
