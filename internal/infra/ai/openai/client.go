package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/legalmind/internal/domain/ai"
	"github.com/bryanwahyu/legalmind/internal/infra/ai/prompt"
)

const BackendName = "openai"

// Client talks to any OpenAI-compatible chat completions endpoint
type Client struct {
	*openai.Client
}

// NewClient builds a client; an empty baseURL keeps the public OpenAI endpoint.
func NewClient(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{Client: openai.NewClientWithConfig(cfg)}
}

func (c *Client) Name() string { return BackendName }

// Load checks the model is served by the endpoint.
func (c *Client) Load(ctx context.Context, model string) (*domai.ModelInfo, error) {
	m, err := c.GetModel(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("failed to get model %s: %w", model, err)
	}
	name := m.ID
	if name == "" {
		name = model
	}
	return &domai.ModelInfo{Backend: BackendName, Name: name, Task: "chat.completion", OwnedBy: m.OwnedBy}, nil
}

// Generate asks for a deterministic summary bounded by req.MaxLength tokens.
func (c *Client) Generate(ctx context.Context, model string, req domai.SummarizeRequest) (string, error) {
	chat := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(req.Text, req.MinLength, req.MaxLength)},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens and have temperature fixed at 1
	if isReasoningModel(model) {
		chat.MaxCompletionTokens = req.MaxLength
	} else {
		chat.MaxTokens = req.MaxLength
		// go-openai drops a zero temperature from the payload
		chat.Temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", domai.ErrEmptySummary
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
