// internal/llm/openai/openai.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tahcohcat/liferpg-web/config"
	"github.com/tahcohcat/liferpg-web/internal/llm/chat"
	"github.com/tahcohcat/liferpg-web/internal/logger"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to any OpenAI compatible chat completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	config     *config.OpenAIConfig
	logger     *logger.Log
	httpClient *http.Client
}

type ChatRequest struct {
	Model       string         `json:"model"`
	Messages    []chat.Message `json:"messages"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chat.Message `json:"message"`
		FinishReason string       `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		config:     cfg,
		logger:     logger.New(),
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

// call sends one request and returns the body of a 200 response. Other
// statuses become errors carrying the code and, when present, the API's
// own message.
func (c *Client) call(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("OpenAI request failed")
		return nil, fmt.Errorf("openai %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var wrapped struct {
			Error *apiError `json:"error"`
		}
		if json.Unmarshal(data, &wrapped) == nil && wrapped.Error != nil {
			return nil, fmt.Errorf("openai %s: status %d: %s", path, resp.StatusCode, wrapped.Error.Message)
		}
		return nil, fmt.Errorf("openai %s: status %d", path, resp.StatusCode)
	}
	return data, nil
}

// GenerateResponse sends prompt as a conversation (see package chat) and
// returns the first choice.
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	c.logger.Debugf("Asking OpenAI model %s", c.config.Model)

	data, err := c.call(ctx, http.MethodPost, "/chat/completions", ChatRequest{
		Model:       c.config.Model,
		Messages:    chat.Decode(prompt),
		Temperature: 0.7,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("openai API error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	c.logger.Debugf("OpenAI answered, %d tokens used", out.Usage.TotalTokens)
	return out.Choices[0].Message.Content, nil
}

func (c *Client) IsModelAvailable(ctx context.Context) error {
	data, err := c.call(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return err
	}

	var models modelList
	if err := json.Unmarshal(data, &models); err != nil {
		return fmt.Errorf("failed to unmarshal models response: %w", err)
	}

	ids := make([]string, 0, len(models.Data))
	for _, m := range models.Data {
		if m.ID == c.config.Model {
			return nil
		}
		ids = append(ids, m.ID)
	}
	return fmt.Errorf("model %s not found. Available models: %v", c.config.Model, ids)
}
