// Package telegram talks to the Telegram Bot API: the JSON and multipart
// transport, the relay platform client built on it, and a token probe.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Transport posts Bot API methods. Implementations return a non-nil Reply
// for every answered request, whatever its status; errors are reserved
// for transport failures.
type Transport interface {
	PostJSON(ctx context.Context, method string, payload any) (*Reply, error)
	PostMultipart(ctx context.Context, method string, parts []FormPart) (*Reply, error)
}

// Reply is a raw Bot API response.
type Reply struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Reply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// FormPart is one field of a multipart body. Parts with a FileName are
// written as file attachments with ContentType.
type FormPart struct {
	Name        string
	Value       string
	FileName    string
	ContentType string
	Data        []byte
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPTransport creates a transport for the bot identified by token.
// A zero timeout leaves requests bounded only by their context.
func NewHTTPTransport(baseURL, token string, timeout time.Duration) *HTTPTransport {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)
}

// PostJSON sends payload as a JSON body.
func (t *HTTPTransport) PostJSON(ctx context.Context, method string, payload any) (*Reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}
	return t.do(ctx, method, "application/json", bytes.NewReader(body))
}

// PostMultipart sends parts as a multipart/form-data body, in order.
func (t *HTTPTransport) PostMultipart(ctx context.Context, method string, parts []FormPart) (*Reply, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	for _, part := range parts {
		if err := writePart(form, part); err != nil {
			return nil, fmt.Errorf("failed to build %s form field %q: %w", method, part.Name, err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s form: %w", method, err)
	}

	return t.do(ctx, method, form.FormDataContentType(), &buf)
}

func (t *HTTPTransport) do(ctx context.Context, method, contentType string, body io.Reader) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(method), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, redact(err, t.token))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	return &Reply{StatusCode: resp.StatusCode, Body: data}, nil
}

// paramEscaper quotes a Content-Disposition parameter. Line breaks are
// dropped so a caller supplied file name cannot start a new header.
var paramEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"", "\r", "", "\n", "")

func writePart(form *multipart.Writer, part FormPart) error {
	if part.FileName == "" {
		return form.WriteField(part.Name, part.Value)
	}

	contentType := part.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		paramEscaper.Replace(part.Name), paramEscaper.Replace(part.FileName)))
	h.Set("Content-Type", contentType)

	w, err := form.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write(part.Data)
	return err
}

// redact strips the bot token from errors that echo the request URL.
func redact(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return redactedError{msg: strings.ReplaceAll(err.Error(), token, "<token>"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e redactedError) Error() string { return e.msg }
func (e redactedError) Unwrap() error { return e.err }
