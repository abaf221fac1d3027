package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/camden-git/personagen/models"
)

// Client calls the OpenAI chat completions API to turn profile attributes into
// a Stable Diffusion prompt pair.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// NewClient creates a prompt generation client. baseURL is the API root
// without a trailing slash (e.g. https://api.openai.com).
func NewClient(baseURL, apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GeneratePromptPair requests a prompt pair for the given profile. Any
// transport, API, or parse failure is returned as an error; the caller decides
// whether the batch continues.
func (c *Client) GeneratePromptPair(ctx context.Context, profile *models.AdminProfile) (PromptPair, error) {
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildUserMessage(profile)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return PromptPair{}, fmt.Errorf("failed to encode chat completion request: %w", err)
	}

	reqURL := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return PromptPair{}, fmt.Errorf("failed to create chat completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PromptPair{}, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PromptPair{}, fmt.Errorf("failed to read chat completion response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return PromptPair{}, fmt.Errorf("failed to decode chat completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if completion.Error != nil {
			return PromptPair{}, fmt.Errorf("chat completion API error (%d %s): %s", resp.StatusCode, completion.Error.Type, completion.Error.Message)
		}
		return PromptPair{}, fmt.Errorf("chat completion API returned status %d", resp.StatusCode)
	}

	if len(completion.Choices) == 0 {
		return PromptPair{}, fmt.Errorf("chat completion response contains no choices")
	}

	return ParsePromptPair(completion.Choices[0].Message.Content)
}
