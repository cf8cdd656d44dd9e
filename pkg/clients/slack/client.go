package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"frameworks/pkg/clients"

	"github.com/failsafe-go/failsafe-go"
)

const defaultBaseURL = "https://slack.com/api"

type APIError struct {
	StatusCode int
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("slack returned error: %s", e.Code)
	}
	return fmt.Sprintf("slack returned status: %d", e.StatusCode)
}

type Client struct {
	baseURL      string
	token        string
	client       *http.Client
	httpExecutor failsafe.Executor[*http.Response]
	shouldRetry  func(resp *http.Response, err error) bool
}

type Option func(*Client)

func NewClient(token string, opts ...Option) *Client {
	defaultConfig := clients.DefaultHTTPExecutorConfig()
	c := &Client{
		baseURL:      defaultBaseURL,
		token:        token,
		client:       &http.Client{Timeout: 10 * time.Second},
		httpExecutor: clients.NewHTTPExecutor(defaultConfig),
		shouldRetry:  defaultConfig.ShouldRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

func WithHTTPExecutorConfig(cfg clients.HTTPExecutorConfig) Option {
	return func(c *Client) {
		c.httpExecutor = clients.NewHTTPExecutor(cfg)
		c.shouldRetry = cfg.ShouldRetry
	}
}

func (c *Client) doRequest(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if c.httpExecutor == nil {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return c.client.Do(req)
	}

	return clients.ExecuteHTTP(ctx, c.httpExecutor, func() (*http.Response, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if c.shouldRetry != nil && c.shouldRetry(resp, err) {
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
		}
		return resp, err
	})
}

func (c *Client) postJSON(ctx context.Context, method string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, method)
	resp, err := c.doRequest(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// OpenDirectConversation opens (or resumes) a direct message channel with a
// user and returns its channel ID.
func (c *Client) OpenDirectConversation(ctx context.Context, userID string) (string, error) {
	reqBody := struct {
		Users string `json:"users"`
	}{Users: userID}

	var result struct {
		OK      bool   `json:"ok"`
		Error   string `json:"error"`
		Channel struct {
			ID string `json:"id"`
		} `json:"channel"`
	}

	if err := c.postJSON(ctx, "conversations.open", reqBody, &result); err != nil {
		return "", err
	}
	if !result.OK {
		return "", &APIError{Code: result.Error}
	}
	return result.Channel.ID, nil
}

// PostMessage posts a message to a channel and returns its timestamp. A
// non-empty threadTS posts the message as a reply in that thread.
func (c *Client) PostMessage(ctx context.Context, channelID, text, threadTS string) (string, error) {
	reqBody := struct {
		Channel  string `json:"channel"`
		Text     string `json:"text"`
		ThreadTS string `json:"thread_ts,omitempty"`
	}{
		Channel:  channelID,
		Text:     text,
		ThreadTS: threadTS,
	}

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		TS    string `json:"ts"`
	}

	if err := c.postJSON(ctx, "chat.postMessage", reqBody, &result); err != nil {
		return "", err
	}
	if !result.OK {
		return "", &APIError{Code: result.Error}
	}
	return result.TS, nil
}
