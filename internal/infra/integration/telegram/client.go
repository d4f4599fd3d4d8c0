package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries int
	retryDelay time.Duration
}

func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

// NewClientWithBaseURL exists for tests against a local httptest server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	c.retryDelay = time.Millisecond
	return c
}

// SendMessage delivers a text message to a chat. The token is per call:
// every bot managed by the dashboard has its own.
func (c *Client) SendMessage(ctx context.Context, token, chatID, text string, opts SendMessageOptions) (*Message, error) {
	params := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if opts.ParseMode != "" {
		params["parse_mode"] = opts.ParseMode
	}
	if opts.DisableWebPagePreview {
		params["disable_web_page_preview"] = true
	}
	if opts.DisableNotification {
		params["disable_notification"] = true
	}

	raw, err := c.request(ctx, token, "sendMessage", params)
	if err != nil {
		return nil, err
	}

	var message Message
	if err := json.Unmarshal(raw, &message); err != nil {
		return nil, fmt.Errorf("telegram: decode sendMessage result: %w", err)
	}

	return &message, nil
}

func (c *Client) GetChatMemberCount(ctx context.Context, token, chatID string) (int, error) {
	raw, err := c.request(ctx, token, "getChatMemberCount", map[string]interface{}{
		"chat_id": chatID,
	})
	if err != nil {
		return 0, err
	}

	var count int
	if err := json.Unmarshal(raw, &count); err != nil {
		return 0, fmt.Errorf("telegram: decode member count: %w", err)
	}

	return count, nil
}

func (c *Client) SetWebhook(ctx context.Context, token, url string) error {
	_, err := c.request(ctx, token, "setWebhook", map[string]interface{}{
		"url":             url,
		"allowed_updates": []string{"message", "callback_query", "chat_member"},
	})
	return err
}

func (c *Client) GetWebhookInfo(ctx context.Context, token string) (*WebhookInfo, error) {
	raw, err := c.request(ctx, token, "getWebhookInfo", map[string]interface{}{})
	if err != nil {
		return nil, err
	}

	var info WebhookInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("telegram: decode webhook info: %w", err)
	}

	return &info, nil
}

// request posts one Bot API call and retries transient failures (network
// errors, 429, 5xx) with exponential backoff. Other API errors are final.
func (c *Client) request(ctx context.Context, token, method string, params map[string]interface{}) (json.RawMessage, error) {
	jsonBody, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal %s params: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, token, method)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay << (attempt - 1)
			log.Printf("🔁 Telegram: retrying %s (attempt %d/%d) after %s", method, attempt, c.maxRetries, delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, retryable, err := c.do(ctx, url, method, jsonBody)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("telegram: %s failed after %d attempts: %w", method, c.maxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, url, method string, jsonBody []byte) (json.RawMessage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failure or client timeout. Transient by assumption.
		return nil, true, fmt.Errorf("telegram: request %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, false, fmt.Errorf("telegram: decode %s response: %w", method, err)
	}

	if !apiResp.OK {
		apiErr := &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, apiErr
	}

	return apiResp.Result, false, nil
}
