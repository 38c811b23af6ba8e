package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/tahcohcat/liferpg-web/config"
	"github.com/tahcohcat/liferpg-web/internal/llm/chat"
	"github.com/tahcohcat/liferpg-web/internal/logger"
)

type Client struct {
	client *api.Client
	config *config.OllamaConfig
	logger *logger.Log
}

// NewClient talks to cfg.Host when set, otherwise to OLLAMA_HOST or the
// local default.
func NewClient(cfg *config.OllamaConfig) (*Client, error) {
	var (
		client *api.Client
		err    error
	)
	if cfg.Host != "" {
		var base *url.URL
		base, err = url.Parse(cfg.Host)
		if err == nil {
			client = api.NewClient(base, http.DefaultClient)
		}
	} else {
		client, err = api.ClientFromEnvironment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &Client{
		client: client,
		config: cfg,
		logger: logger.New(),
	}, nil
}

func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	shouldStream := false

	messages := chat.Decode(prompt)
	req := &api.GenerateRequest{
		Model:  c.config.Model,
		Prompt: chat.Flatten(messages),
		Stream: &shouldStream,
		Options: map[string]interface{}{
			"temperature": 0.7,
			"top_p":       0.9,
		},
	}

	timeout := c.config.Timeout
	if timeout <= 0 {
		timeout = 60
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	c.logger.Debugf("Generating response with model %s", c.config.Model)

	var response string
	f := func(g api.GenerateResponse) error {
		response += g.Response
		return nil
	}

	if err := c.client.Generate(timeoutCtx, req, f); err != nil {
		c.logger.WithError(err).Error("Failed to generate response")
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	return response, nil
}

func (c *Client) IsModelAvailable(ctx context.Context) error {
	models, err := c.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, model := range models.Models {
		if model.Name == c.config.Model {
			return nil
		}
	}

	return fmt.Errorf("model %s not found. Available models: %v", c.config.Model, getModelNames(models.Models))
}

func getModelNames(models []api.ListModelResponse) []string {
	names := make([]string, len(models))
	for i, model := range models {
		names[i] = model.Name
	}
	return names
}
