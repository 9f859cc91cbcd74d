// Package huggingface runs the "summarization" task on a Hugging Face inference endpoint.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domai "github.com/bryanwahyu/legalmind/internal/domain/ai"
)

const (
	BackendName = "huggingface"

	DefaultInferenceURL = "https://router.huggingface.co/hf-inference"
	DefaultHubURL       = "https://huggingface.co"

	defaultTimeout = 120 * time.Second
	maxErrorBody   = 4 << 10
)

// Client for the inference API and the model hub
type Client struct {
	token        string
	inferenceURL string
	hubURL       string
	httpClient   *http.Client
}

type summarizationParameters struct {
	MaxLength  int  `json:"max_length"`
	MinLength  int  `json:"min_length"`
	DoSample   bool `json:"do_sample"`
	Truncation bool `json:"truncation"`
}

type summarizationRequest struct {
	Inputs     string                  `json:"inputs"`
	Parameters summarizationParameters `json:"parameters"`
}

type summarizationOutput struct {
	SummaryText string `json:"summary_text"`
}

type apiError struct {
	Error string `json:"error"`
}

type hubModel struct {
	ID          string `json:"id"`
	ModelID     string `json:"modelId"`
	Author      string `json:"author"`
	PipelineTag string `json:"pipeline_tag"`
}

// NewClient builds a client; empty URLs fall back to the public endpoints.
func NewClient(token, inferenceURL, hubURL string) *Client {
	if inferenceURL == "" {
		inferenceURL = DefaultInferenceURL
	}
	if hubURL == "" {
		hubURL = DefaultHubURL
	}
	return &Client{
		token:        token,
		inferenceURL: strings.TrimRight(inferenceURL, "/"),
		hubURL:       strings.TrimRight(hubURL, "/"),
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Name() string { return BackendName }

// Load fetches the model card metadata from the hub.
func (c *Client) Load(ctx context.Context, model string) (*domai.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.hubURL+"/api/models/"+escapeModel(model), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	c.authorize(req)

	var m hubModel
	if err := c.do(req, &m); err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", model, err)
	}
	name := m.ID
	if name == "" {
		name = m.ModelID
	}
	if name == "" {
		name = model
	}
	return &domai.ModelInfo{Backend: BackendName, Name: name, Task: m.PipelineTag, OwnedBy: m.Author}, nil
}

// Generate runs the summarization task with sampling disabled.
func (c *Client) Generate(ctx context.Context, model string, in domai.SummarizeRequest) (string, error) {
	body, err := json.Marshal(summarizationRequest{
		Inputs: in.Text,
		Parameters: summarizationParameters{
			MaxLength:  in.MaxLength,
			MinLength:  in.MinLength,
			DoSample:   false,
			Truncation: true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.inferenceURL+"/models/"+escapeModel(model), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	var out []summarizationOutput
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("summarization request failed: %w", err)
	}
	if len(out) == 0 {
		return "", domai.ErrEmptySummary
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return domai.ErrQuotaExceeded
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Error != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, ae.Error)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

// escapeModel keeps the owner/name separator while escaping each segment.
func escapeModel(model string) string {
	parts := strings.Split(model, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
