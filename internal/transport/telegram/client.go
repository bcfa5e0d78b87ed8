package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"onboardbot/internal/config"
)

const userAgent = "onboardbot/0.1.0"

// Client talks to the Telegram Bot API over HTTPS. It is safe for
// concurrent use.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	pollTimeout int
}

// NewClient builds a client from configuration. The request timeout must
// exceed the long-poll timeout or every getUpdates call would abort early.
func NewClient(cfg *config.Config) *Client {
	requestTimeout := time.Duration(cfg.Telegram.RequestTimeoutSeconds) * time.Second
	if requestTimeout <= time.Duration(cfg.Telegram.PollTimeoutSeconds)*time.Second {
		requestTimeout = time.Duration(cfg.Telegram.PollTimeoutSeconds+10) * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.Telegram.APIBaseURL, "/"),
		token:       cfg.Telegram.BotToken,
		httpClient:  &http.Client{Timeout: requestTimeout},
		pollTimeout: cfg.Telegram.PollTimeoutSeconds,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// call invokes a Bot API method with a JSON body and decodes the result
// envelope into out when out is non-nil.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	var body io.Reader
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode %s params: %w", method, err)
		}
		body = bytes.NewReader(encoded)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s failed with code %d: %s", method, envelope.ErrorCode, envelope.Description)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// FetchFile resolves a file id to its server path and streams the content.
func (c *Client) FetchFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	var file struct {
		FilePath string `json:"file_path"`
	}
	if err := c.call(ctx, "getFile", map[string]string{"file_id": fileID}, &file); err != nil {
		return nil, err
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("file %s has no server path", fileID)
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("download file %s returned %d: %s", fileID, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}
