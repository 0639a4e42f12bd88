// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdiddy/pm-agent/internal/httputil"
	"github.com/pdiddy/pm-agent/pkg/types"
)

// Backend abstracts the language-model API so tests can supply a mock.
// Each implementation sends one system prompt and one user prompt and
// returns the raw text of the reply.
type Backend interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const (
	DefaultClaudeModel = "claude-sonnet-4-5-20250929"
	DefaultOpenAIModel = "gpt-4o"

	defaultMaxTokens = 4096
)

// Package-level vars for test substitution.
var (
	claudeAPIURL = "https://api.anthropic.com/v1/messages"
	openAIAPIURL = "https://api.openai.com/v1/chat/completions"
)

// NewBackend builds the backend for cfg.Provider.
func NewBackend(cfg types.AIConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client := &http.Client{Timeout: cfg.Timeout}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	policy := httputil.Policy{MaxRetries: cfg.MaxRetries, Logger: logger}

	switch cfg.Provider {
	case types.ProviderAnthropic, "":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic API key required")
		}
		model := cfg.Model
		if model == "" {
			model = DefaultClaudeModel
		}
		return &ClaudeBackend{
			APIKey: cfg.AnthropicAPIKey, Model: model, MaxTokens: maxTokens,
			Client: client, Policy: policy,
		}, nil
	case types.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai API key required")
		}
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		return &OpenAIBackend{
			APIKey: cfg.OpenAIAPIKey, Model: model, MaxTokens: maxTokens,
			Temperature: cfg.Temperature, Client: client, Policy: policy,
		}, nil
	}
	return nil, fmt.Errorf("unsupported provider %q (use anthropic or openai)", cfg.Provider)
}

// ClaudeBackend calls the Anthropic Messages API.
type ClaudeBackend struct {
	APIKey    string
	Model     string
	MaxTokens int
	Client    *http.Client
	Policy    httputil.Policy
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends one message and returns the first text block of the reply.
func (c *ClaudeBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	body := claudeRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		System:    system,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var cResp claudeResponse
	if err := postJSON(ctx, c.Client, c.Policy, claudeAPIURL, headers, body, &cResp, "Claude"); err != nil {
		return "", err
	}
	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}

// OpenAIBackend calls the OpenAI Chat Completions API.
type OpenAIBackend struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Client      *http.Client
	Policy      httputil.Policy
}

type openAIRequest struct {
	Model               string          `json:"model"`
	Messages            []openAIMessage `json:"messages"`
	MaxCompletionTokens int             `json:"max_completion_tokens"`
	Temperature         *float64        `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// fixedTemperaturePrefixes name model families that reject a temperature
// and a system role.
var fixedTemperaturePrefixes = []string{"o1", "gpt-5"}

func supportsTemperature(model string) bool {
	for _, p := range fixedTemperaturePrefixes {
		if strings.HasPrefix(model, p) {
			return false
		}
	}
	return true
}

// Complete sends a chat completion and returns the first choice's content.
func (o *OpenAIBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	body := openAIRequest{
		Model:               o.Model,
		MaxCompletionTokens: o.MaxTokens,
	}
	if supportsTemperature(o.Model) {
		temp := o.Temperature
		body.Temperature = &temp
		body.Messages = []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		}
	} else {
		body.Messages = []openAIMessage{{Role: "user", Content: system + "\n\n" + prompt}}
	}
	headers := map[string]string{"Authorization": "Bearer " + o.APIKey}

	var oResp openAIResponse
	if err := postJSON(ctx, o.Client, o.Policy, openAIAPIURL, headers, body, &oResp, "OpenAI"); err != nil {
		return "", err
	}
	if len(oResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return oResp.Choices[0].Message.Content, nil
}

func postJSON(ctx context.Context, client *http.Client, policy httputil.Policy, url string, headers map[string]string, in, out any, api string) error {
	bodyBytes, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, policy)
	if err != nil {
		return fmt.Errorf("calling %s API: %w", api, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s API returned %d: %s", api, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", api, err)
	}
	return nil
}
