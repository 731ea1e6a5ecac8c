package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

const systemPrompt = "You are an expert article categorization assistant. Return only valid JSON."

// ErrEmptyResponse is returned when the model answers without content.
var ErrEmptyResponse = errors.New("no response from OpenAI")

// OpenAICategorizer implements ports.Categorizer with one chat completion per batch.
type OpenAICategorizer struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ ports.Categorizer = (*OpenAICategorizer)(nil)

// NewOpenAICategorizer builds the client from configuration. BaseURL, when
// set, points the client at an OpenAI-compatible endpoint.
func NewOpenAICategorizer(cfg config.OpenAIConfig, logger *slog.Logger) (*OpenAICategorizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai api key is not set")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICategorizer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "openai"),
	}, nil
}

// Model returns the configured model name.
func (c *OpenAICategorizer) Model() string { return c.model }

type batchResponse struct {
	Articles []domain.CategorizedItem `json:"articles"`
}

// Categorize asks the model to label every item and returns the parsed labels
// with token usage. Labels are returned as-is; validation is up to the caller.
func (c *OpenAICategorizer) Categorize(ctx context.Context, items []domain.CategorizationItem) (domain.CategorizationBatch, error) {
	if len(items) == 0 {
		return domain.CategorizationBatch{Usage: domain.TokenUsage{Model: c.model}}, nil
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildBatchPrompt(items)},
		},
		Temperature:    c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	c.logger.Debug("requesting categorization", "model", c.model, "items", len(items))
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.CategorizationBatch{}, fmt.Errorf("openai chat completion: %w", err)
	}

	usage := domain.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Model:            c.model,
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return domain.CategorizationBatch{Usage: usage}, ErrEmptyResponse
	}

	var parsed batchResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return domain.CategorizationBatch{Usage: usage}, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}
	c.logger.Debug("categorization received", "results", len(parsed.Articles), "total_tokens", usage.TotalTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	return domain.CategorizationBatch{Items: parsed.Articles, Usage: usage}, nil
}
