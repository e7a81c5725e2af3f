// Package openai implements the llm.LLM interface against any
// OpenAI-compatible chat completion endpoint, including a local LM Studio
// server.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/innokenty/voicecast/pkg/ai"
	"github.com/innokenty/voicecast/pkg/ai/llm"
)

const (
	// DefaultBaseURL points at a local LM Studio server.
	DefaultBaseURL = "http://127.0.0.1:1234/v1"
	// DefaultModel is what LM Studio reports for whatever model is loaded.
	DefaultModel = "local-model"
)

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL     string
	APIKey      string // LM Studio ignores it but the SDK requires one
	Model       string
	MaxTokens   int
	Temperature float32
	Retry       ai.RetryConfig
	Logger      *slog.Logger
}

// Client is an llm.LLM backed by an OpenAI-compatible HTTP endpoint.
type Client struct {
	client *openai.Client
	cfg    Config
	logger *slog.Logger
}

// New creates a client. Zero-value config fields get LM Studio defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "not-needed"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry = ai.DefaultRetryConfig
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Chat performs chat completion with conversation history. Transient
// failures are retried per the configured retry policy.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	start := time.Now()

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.cfg.Temperature
	}

	completionReq := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = c.client.CreateChatCompletion(ctx, completionReq)
		if err == nil {
			break
		}
		if attempt >= c.cfg.Retry.MaxRetries || ctx.Err() != nil {
			return llm.ChatResponse{}, ai.NewRecoverableError(err,
				fmt.Sprintf("chat completion failed after %d attempts", attempt+1))
		}
		delay := c.cfg.Retry.NextDelay(attempt)
		c.logger.Warn("chat completion failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return llm.ChatResponse{}, ai.NewRecoverableError(ctx.Err(), "chat completion cancelled")
		}
	}

	if len(resp.Choices) == 0 {
		return llm.ChatResponse{}, ai.NewFatalError(
			fmt.Errorf("no chat completion choices returned"), "")
	}

	choice := resp.Choices[0]
	c.logger.Debug("chat completion finished",
		slog.Int("tokens", resp.Usage.TotalTokens),
		slog.Duration("duration", time.Since(start)))

	return llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.MessageRole(choice.Message.Role),
			Content: choice.Message.Content,
		},
		TokensUsed:   resp.Usage.TotalTokens,
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Capabilities returns the provider's capabilities.
func (c *Client) Capabilities() llm.LLMCapabilities {
	return llm.LLMCapabilities{
		SupportsStreaming:  false,
		MaxTokens:          32768,
		SupportedModels:    []string{c.cfg.Model},
		SupportsSystemRole: true,
	}
}
