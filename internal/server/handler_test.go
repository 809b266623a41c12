package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/edgard/audiorelay/internal/health"
	"github.com/edgard/audiorelay/internal/relay"
	"github.com/edgard/audiorelay/internal/telegram"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTelegram is an httptest Bot API that records calls in order.
type fakeTelegram struct {
	mu          sync.Mutex
	calls       []string
	audio       []byte
	audioType   string
	textStatus  int
	textBody    string
	audioStatus int
	audioBody   string
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{
		textStatus:  http.StatusOK,
		textBody:    `{"ok":true,"result":{"message_id":42}}`,
		audioStatus: http.StatusOK,
		audioBody:   `{"ok":true,"result":{"message_id":43}}`,
	}
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.calls = append(f.calls, "sendMessage")
		w.WriteHeader(f.textStatus)
		w.Write([]byte(f.textBody))
	case strings.HasSuffix(r.URL.Path, "/sendAudio"):
		f.calls = append(f.calls, "sendAudio")
		if file, header, err := r.FormFile("audio"); err == nil {
			f.audio, _ = io.ReadAll(file)
			f.audioType = header.Header.Get("Content-Type")
			file.Close()
		}
		w.WriteHeader(f.audioStatus)
		w.Write([]byte(f.audioBody))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeTelegram) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type testEnv struct {
	handler  http.Handler
	telegram *fakeTelegram
}

func newTestEnv(t *testing.T, creds relay.Credentials, cors bool) *testEnv {
	t.Helper()

	fake := newFakeTelegram()
	api := httptest.NewServer(fake)
	t.Cleanup(api.Close)

	log := discardLogger()
	client := telegram.NewClient(telegram.NewHTTPTransport(api.URL, creds.BotToken, 0), log)
	svc := relay.NewService(creds, client, log)
	h := NewHandler(svc, HandlerOptions{CORS: cors, MaxBodyBytes: 1 << 20}, log)

	return &testEnv{
		handler:  NewMux("/api/send-telegram", h, health.NewStatus(creds.BotToken != "", false), log),
		telegram: fake,
	}
}

var goodCreds = relay.Credentials{BotToken: "test-token", ChatID: "12345"}

func (e *testEnv) do(method, body string) (*httptest.ResponseRecorder, Response) {
	req := httptest.NewRequest(method, "/api/send-telegram", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var resp Response
	if rec.Body.Len() > 0 {
		json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func requestBody(t *testing.T, payload []byte) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"message":  "New recording",
		"audio":    base64.StdEncoding.EncodeToString(payload),
		"fileName": "Anna_Smith_take1.mp3",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		env := newTestEnv(t, goodCreds, true)
		rec, resp := env.do(method, requestBody(t, []byte("x")))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: status = %d, want 405", method, rec.Code)
		}
		if resp.Error != "Method not allowed" || resp.Success {
			t.Errorf("%s: response = %+v", method, resp)
		}
		if calls := env.telegram.callLog(); len(calls) != 0 {
			t.Errorf("%s: unexpected calls %v", method, calls)
		}
	}
}

func TestHandler_Preflight(t *testing.T) {
	t.Parallel()

	t.Run("cors enabled", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, goodCreds, true)
		rec, _ := env.do(http.MethodOptions, "")

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("body = %q, want empty", rec.Body.String())
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" ||
			rec.Header().Get("Access-Control-Allow-Credentials") != "true" ||
			!strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
			t.Errorf("missing CORS headers: %v", rec.Header())
		}
		if calls := env.telegram.callLog(); len(calls) != 0 {
			t.Errorf("unexpected calls %v", calls)
		}
	})

	t.Run("cors disabled", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, goodCreds, false)
		rec, _ := env.do(http.MethodOptions, "")

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("CORS headers should be absent when disabled")
		}
	})
}

func TestHandler_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"missing audio", `{"message":"hi"}`, "Message and audio are required"},
		{"missing message", `{"audio":"AAAA"}`, "Message and audio are required"},
		{"empty object", `{}`, "Message and audio are required"},
		{"not json", `message=hi`, "Invalid request body"},
		{"empty body", ``, "Invalid request body"},
		{"bad base64", `{"message":"hi","audio":"%%%"}`, "Audio is not valid base64"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, goodCreds, true)
			rec, resp := env.do(http.MethodPost, tc.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if !strings.HasPrefix(resp.Error, tc.wantError) {
				t.Errorf("error = %q, want prefix %q", resp.Error, tc.wantError)
			}
			if resp.Delivery == nil || resp.Delivery.Text != relay.StepSkipped || resp.Delivery.Audio != relay.StepSkipped {
				t.Errorf("delivery = %+v, want both skipped", resp.Delivery)
			}
			if calls := env.telegram.callLog(); len(calls) != 0 {
				t.Errorf("unexpected calls %v", calls)
			}
		})
	}
}

func TestHandler_BodyTooLarge(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil, HandlerOptions{MaxBodyBytes: 8}, discardLogger())
	reply := h.Process(context.Background(), http.MethodPost, strings.NewReader(`{"message":"too long"}`))

	if reply.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", reply.Status)
	}
	if !bytes.Contains(reply.Body, []byte("Request body too large")) {
		t.Errorf("body = %s", reply.Body)
	}

	var resp Response
	if err := json.Unmarshal(reply.Body, &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Delivery == nil || resp.Delivery.Text != relay.StepSkipped || resp.Delivery.Audio != relay.StepSkipped {
		t.Errorf("delivery = %+v, want both skipped", resp.Delivery)
	}
}

func TestHandler_MissingCredentials(t *testing.T) {
	t.Parallel()

	for _, creds := range []relay.Credentials{{ChatID: "12345"}, {BotToken: "t"}} {
		env := newTestEnv(t, creds, true)
		rec, resp := env.do(http.MethodPost, requestBody(t, []byte("x")))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		if resp.Error != "Telegram credentials not configured" {
			t.Errorf("error = %q", resp.Error)
		}
		if calls := env.telegram.callLog(); len(calls) != 0 {
			t.Errorf("unexpected calls %v", calls)
		}
	}
}

func TestHandler_TextRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, goodCreds, true)
	env.telegram.textStatus = http.StatusBadRequest
	env.telegram.textBody = `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`

	rec, resp := env.do(http.MethodPost, requestBody(t, []byte("x")))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(resp.Error, "Bad Request: chat not found") {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.Delivery == nil || resp.Delivery.Text != relay.StepFailed || resp.Delivery.Audio != relay.StepSkipped {
		t.Errorf("delivery = %+v", resp.Delivery)
	}
	if calls := env.telegram.callLog(); strings.Join(calls, ",") != "sendMessage" {
		t.Errorf("calls = %v, want only sendMessage", calls)
	}
}

func TestHandler_AudioRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, goodCreds, true)
	env.telegram.audioStatus = http.StatusBadRequest
	env.telegram.audioBody = `Bad Request: audio too big`

	rec, resp := env.do(http.MethodPost, requestBody(t, []byte("x")))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if resp.Error != "Failed to send audio: Bad Request: audio too big" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.Delivery == nil || resp.Delivery.Text != relay.StepSent || resp.Delivery.Audio != relay.StepFailed {
		t.Errorf("delivery = %+v", resp.Delivery)
	}
	if calls := env.telegram.callLog(); strings.Join(calls, ",") != "sendMessage,sendAudio" {
		t.Errorf("calls = %v", calls)
	}
}

func TestHandler_Success(t *testing.T) {
	t.Parallel()

	payload := []byte{0x49, 0x44, 0x33, 0x03, 0x00, 0x00, 0xff, 0xfb, 0x90, 0x64}

	env := newTestEnv(t, goodCreds, true)
	rec, resp := env.do(http.MethodPost, requestBody(t, payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !resp.Success || resp.Message != relay.SuccessMessage || resp.MessageID != 42 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Delivery == nil || resp.Delivery.Text != relay.StepSent || resp.Delivery.Audio != relay.StepSent {
		t.Errorf("delivery = %+v", resp.Delivery)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	env.telegram.mu.Lock()
	defer env.telegram.mu.Unlock()
	if !bytes.Equal(env.telegram.audio, payload) {
		t.Errorf("uploaded audio = %x, want %x", env.telegram.audio, payload)
	}
	if env.telegram.audioType != "audio/mpeg" {
		t.Errorf("audio content type = %q", env.telegram.audioType)
	}
	if strings.Join(env.telegram.calls, ",") != "sendMessage,sendAudio" {
		t.Errorf("calls = %v", env.telegram.calls)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		creds      relay.Credentials
		wantStatus int
	}{
		{"configured", goodCreds, http.StatusOK},
		{"unconfigured", relay.Credentials{}, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, tc.creds, true)
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var report health.Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("decode report: %v", err)
			}
			if report.CredentialsSet != (tc.creds.BotToken != "") {
				t.Errorf("report = %+v", report)
			}
		})
	}
}
