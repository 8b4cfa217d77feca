// Package telegram is the Notification Relay's only egress path: a thin
// HTTP client around the Bot API's sendMessage method (spec.md §4.6).
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ServiceInterface is the surface the Notification Relay depends on.
type ServiceInterface interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Service struct {
	botToken   string
	httpClient *http.Client
}

// NewService builds the Bot API client; the relay's 5 s-with-retry call
// budget (spec.md §5) is enforced by the caller's retry loop, not here.
func NewService(botToken string) ServiceInterface {
	return &Service{
		botToken:   botToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// TransientError wraps a Bot API failure the Notification Relay should
// retry (connection refused, 5xx, timeout). A plain error from SendMessage
// that is not a TransientError is final and must be dropped, not retried
// (spec.md §4.6: "4xx from Bot is final and dropped").
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err should be retried by the relay's
// backoff loop.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

func (s *Service) SendMessage(ctx context.Context, chatID int64, text string) error {
	if s.botToken == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}

	payload := sendMessageRequest{
		ChatID:    chatID,
		Text:      EscapeTextForMarkdownV2(text),
		ParseMode: "MarkdownV2",
	}

	return s.sendRequest(ctx, "sendMessage", payload)
}

func (s *Service) sendRequest(ctx context.Context, method string, payload interface{}) error {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/%s", s.botToken, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// connection refused, timeout, DNS failure: transient
		return &TransientError{Err: fmt.Errorf("telegram: %s: %w", method, err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 500 {
		return &TransientError{Err: fmt.Errorf("telegram: %s: status %d: %s", method, resp.StatusCode, respBody)}
	}

	var telegramResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		ErrorCode   int    `json:"error_code,omitempty"`
	}
	if err := json.Unmarshal(respBody, &telegramResp); err != nil {
		return &TransientError{Err: fmt.Errorf("telegram: %s: decode response: %w", method, err)}
	}

	if !telegramResp.OK {
		// Telegram replies 200 with ok=false for most 4xx-equivalent
		// rejections; treat as final unless it carries a 5xx error_code.
		if telegramResp.ErrorCode >= 500 {
			return &TransientError{Err: fmt.Errorf("telegram: %s: %s", method, telegramResp.Description)}
		}
		return fmt.Errorf("telegram: %s: %s", method, telegramResp.Description)
	}

	return nil
}

// EscapeTextForMarkdownV2 escapes the characters MarkdownV2 reserves,
// per the Bot API's formatting rules.
func EscapeTextForMarkdownV2(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
		"(", "\\(", ")", "\\)", "\\", "\\\\",
		"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+",
		"-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}
