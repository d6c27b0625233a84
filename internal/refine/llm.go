package refine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kavisanghavi/logline/internal/jsonutil"
)

// LLMRefiner rewrites raw text through an OpenAI-compatible chat endpoint.
// The response contract is strict JSON: {"lines": ["...", ...]}.
type LLMRefiner struct {
	http     *http.Client
	endpoint string
	apiKey   string
	model    string
}

type LLMRefinerOptions struct {
	HTTPClient *http.Client
	Endpoint   string
	APIKey     string
	Model      string
}

func NewLLMRefiner(opts LLMRefinerOptions) (*LLMRefiner, error) {
	endpoint := strings.TrimSpace(strings.TrimRight(opts.Endpoint, "/"))
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &LLMRefiner{
		http:     httpClient,
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(opts.APIKey),
		model:    model,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const refineSystemPrompt = "You rewrite a raw status message into terse work-log lines. " +
	"Return strict JSON only. Output schema: {\"lines\":[\"...\"]}. " +
	"Each line is one completed item in past tense, no trailing period, no bullet markers. " +
	"Split compound updates into separate lines. Never invent work that is not in the input. " +
	"lines must not be empty."

func (r *LLMRefiner) Refine(ctx context.Context, text string) ([]string, error) {
	if r == nil || r.http == nil {
		return nil, fmt.Errorf("llm refiner is not initialized")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	payload := chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: refineSystemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0,
		MaxTokens:   400,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("refine llm http %d", resp.StatusCode)
	}
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if out.Error != nil && strings.TrimSpace(out.Error.Message) != "" {
		return nil, fmt.Errorf("refine llm failed: %s", strings.TrimSpace(out.Error.Message))
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("refine llm returned no choices")
	}

	var parsed struct {
		Lines []string `json:"lines"`
	}
	if err := jsonutil.DecodeWithFallback(out.Choices[0].Message.Content, &parsed); err != nil {
		return nil, fmt.Errorf("invalid refine response: %w", err)
	}
	lines := make([]string, 0, len(parsed.Lines))
	for _, line := range parsed.Lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("refine llm returned empty lines")
	}
	return lines, nil
}
