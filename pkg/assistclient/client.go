package assistclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/pkg/topicassist"
)

// Client talks to the topic assistant REST API. It implements the assistant's
// Oracle and Renamer so a terminal or UI process can own its own Controller.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

var (
	_ topicassist.Oracle  = &Client{}
	_ topicassist.Renamer = &Client{}
)

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) SuggestTitle(ctx context.Context, req topicassist.SuggestRequest) (topicassist.SuggestResponse, error) {
	var res topicassist.SuggestResponse
	err := c.do(ctx, http.MethodPost, "/api/ai/v1/suggest-topic-title", req, &res)
	return res, err
}

func (c *Client) RenameTopic(ctx context.Context, req topicassist.RenameRequest) error {
	path := fmt.Sprintf("/api/message/v1/%d", req.Anchor)
	return c.do(ctx, http.MethodPatch, path, req, nil)
}

func (c *Client) SendMessage(ctx context.Context, streamId int64, topic, content string) (*dto.SendMessageResponse, error) {
	var res dto.SendMessageResponse
	err := c.do(ctx, http.MethodPost, "/api/message/v1", dto.SendMessageRequest{
		StreamId: streamId,
		Topic:    topic,
		Content:  content,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Recap(ctx context.Context, messageIds []int64) (*dto.MessageRecapResponse, error) {
	var res dto.MessageRecapResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/v1/message-recap", dto.MessageRecapRequest{MessageIds: messageIds}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
