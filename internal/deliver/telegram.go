package deliver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Telegram posts messages to a chat via the Bot API sendMessage method.
// A failed send is retried exactly once; the second failure is the caller's
// problem, since a half-delivered report needs a human anyway.
type Telegram struct {
	// BaseURL is the Bot API root, overridable in tests. Defaults to
	// https://api.telegram.org.
	BaseURL string
	Token   string
	ChatID  string

	http       *http.Client
	retryDelay time.Duration
}

// NewTelegram creates a sink for the given bot token and chat.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		BaseURL: "https://api.telegram.org",
		Token:   token,
		ChatID:  chatID,
		http:       &http.Client{Timeout: 15 * time.Second},
		retryDelay: 2 * time.Second,
	}
}

// Deliver sends one chunk as a chat message.
func (t *Telegram) Deliver(ctx context.Context, chunk string) error {
	return t.send(ctx, chunk)
}

// Notify sends a short diagnostic message. Same transport as Deliver; the
// separate method keeps call sites honest about intent.
func (t *Telegram) Notify(ctx context.Context, message string) error {
	return t.send(ctx, message)
}

func (t *Telegram) send(ctx context.Context, text string) error {
	err := t.post(ctx, text)
	if err == nil {
		return nil
	}
	slog.Warn("telegram send failed, retrying once", "error", err)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(t.retryDelay):
	}

	if err := t.post(ctx, text); err != nil {
		return fmt.Errorf("telegram delivery failed after retry: %w", err)
	}
	return nil
}

// apiResponse is the Bot API envelope; OK false carries a description.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) post(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.Token)
	form := url.Values{
		"chat_id": {t.ChatID},
		"text":    {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading telegram response: %w", err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return fmt.Errorf("sendMessage: HTTP %d, undecodable body", resp.StatusCode)
	}
	if !api.OK {
		return fmt.Errorf("sendMessage: HTTP %d: %s", resp.StatusCode, api.Description)
	}
	slog.Debug("telegram message sent", "bytes", len(text))
	return nil
}
