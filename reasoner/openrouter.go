package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/bomx/catalog"
	"github.com/teranos/bomx/errors"
	"github.com/teranos/bomx/internal/httpclient"
)

const (
	// DefaultModel is the fallback model when none is specified
	DefaultModel = "openai/gpt-4o-mini"

	maxRetries = 3
)

// Config holds reasoning client configuration
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64      // nil = use default (0.2)
	MaxTokens   *int          // nil = use default (1000)
	Timeout     time.Duration // Per-operation bound; 0 = default 45s
	Logger      *zap.SugaredLogger
}

// OpenRouter is the OpenRouter.ai-backed reasoning client
type OpenRouter struct {
	config     Config
	httpClient *httpclient.SaferClient
	logger     *zap.SugaredLogger
}

var _ Client = (*OpenRouter)(nil)

// NewOpenRouter creates a reasoning client with sane defaults
func NewOpenRouter(config Config) *OpenRouter {
	if config.BaseURL == "" {
		config.BaseURL = "https://openrouter.ai/api/v1"
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Temperature == nil {
		defaultTemp := 0.2
		config.Temperature = &defaultTemp
	}
	if config.MaxTokens == nil {
		defaultTokens := 1000
		config.MaxTokens = &defaultTokens
	}
	if config.Timeout <= 0 {
		config.Timeout = 45 * time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &OpenRouter{
		config:     config,
		httpClient: httpclient.NewSaferClient(config.Timeout),
		logger:     logger,
	}
}

// MapColumns implements Client
func (c *OpenRouter) MapColumns(ctx context.Context, headers []string, sampleRows [][]string) (*ColumnMappingResult, error) {
	prompt := columnMappingPrompt(headers, sampleRows)

	var result ColumnMappingResult
	if err := c.completeJSON(ctx, columnMappingSystem, prompt, &result); err != nil {
		return nil, errors.Wrap(err, "column mapping")
	}
	return &result, nil
}

// ExtractRow implements Client
func (c *OpenRouter) ExtractRow(ctx context.Context, rawText string, mapping *ColumnMappingResult) (*RowExtraction, error) {
	prompt := rowExtractionPrompt(rawText, mapping)

	var result RowExtraction
	if err := c.completeJSON(ctx, rowExtractionSystem, prompt, &result); err != nil {
		return nil, errors.Wrap(err, "row extraction")
	}
	return &result, nil
}

// EvaluateAlternative implements Client. The response must carry exactly
// {valid, reasoning}; anything else fails validation and the caller degrades
// to valid=false.
func (c *OpenRouter) EvaluateAlternative(ctx context.Context, original *catalog.PartRecord, candidate catalog.SimilarPart, assumptions map[string]string) (*Evaluation, error) {
	prompt, err := evaluationPrompt(original, candidate, assumptions)
	if err != nil {
		return nil, err
	}

	raw, err := c.complete(ctx, evaluationSystem, prompt)
	if err != nil {
		return nil, errors.Wrap(err, "alternative evaluation")
	}

	result, err := parseEvaluation(raw)
	if err != nil {
		return nil, errors.Wrap(err, "alternative evaluation")
	}
	return result, nil
}

// completeJSON runs one chat completion and strictly unmarshals the JSON reply
func (c *OpenRouter) completeJSON(ctx context.Context, system, prompt string, out interface{}) error {
	raw, err := c.complete(ctx, system, prompt)
	if err != nil {
		return err
	}
	return strictUnmarshal(raw, out)
}

// complete runs one chat completion with retries and the per-operation timeout
func (c *OpenRouter) complete(ctx context.Context, system, prompt string) (string, error) {
	if c.config.APIKey == "" {
		return "", errors.New("OpenRouter API key not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req := chatCompletionRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    *c.config.Temperature,
		MaxTokens:      *c.config.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var resp *chatCompletionResponse
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * time.Second
			c.logger.Debugw("retrying reasoning request",
				"attempt", attempt, "max_retries", maxRetries-1, "delay", delay)
			select {
			case <-ctx.Done():
				return "", errors.Wrap(errors.ErrTimeout, ctx.Err().Error())
			case <-time.After(delay):
			}
		}

		resp, err = c.createChatCompletion(ctx, req)
		if err == nil {
			if attempt > 0 {
				c.logger.Infow("reasoning request succeeded after retries",
					"attempts", attempt+1, "model", c.config.Model)
			}
			break
		}

		c.logger.Warnw("reasoning API error",
			"attempt", attempt+1, "max_retries", maxRetries, "error", err, "model", c.config.Model)

		if !isRetryableError(err) {
			return "", err
		}
	}
	if err != nil {
		return "", errors.Wrapf(err, "reasoning API error after %d retries", maxRetries)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices from reasoning service")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.logger.Debugw("reasoning response",
		"content_length", len(content),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return content, nil
}

// chatCompletionRequest is the OpenRouter chat completions payload
type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// createChatCompletion sends one request to the chat completions endpoint
func (c *OpenRouter) createChatCompletion(ctx context.Context, req chatCompletionRequest) (*chatCompletionResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("X-Title", "bomx")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	return &chatResp, nil
}

// isRetryableError checks if an error is worth retrying (network-related)
func isRetryableError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT:
				return true
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"connection reset by peer",
		"connection refused",
		"timeout",
		"temporary failure",
		"network is unreachable",
		"i/o timeout",
		"status 429",
		"status 500",
		"status 502",
		"status 503",
	} {
		if strings.Contains(errStr, fragment) {
			return true
		}
	}

	return false
}

// IsConfigured returns true if the client has a valid API key
func (c *OpenRouter) IsConfigured() bool {
	return c.config.APIKey != ""
}

// SetHTTPClient overrides the HTTP client. Only for tests talking to
// httptest servers on loopback.
func (c *OpenRouter) SetHTTPClient(client *http.Client) {
	c.httpClient = httpclient.WrapClient(client)
}
