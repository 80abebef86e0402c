package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ledgerline/ledgerline/internal/common"
	"github.com/ledgerline/ledgerline/internal/model"
)

const extractionSystemPrompt = `You are a financial transaction extractor. ` +
	`Given free-form text, respond with ONLY a valid JSON object of the shape ` +
	`{"amount": number|null, "currency": string|null, "vendor": string|null, ` +
	`"date": "YYYY-MM-DD"|null, "reference_id": string|null, "confidence": number}. ` +
	`Use null for anything you cannot find. Do not include markdown or commentary.`

// fallbackConfidence is reported when the model finds an amount but does not
// supply its own confidence.
const fallbackConfidence = 0.7

// openAIParser implements Parser using the OpenAI chat completions API.
type openAIParser struct {
	client      *openai.Client
	limiter     *rateLimiter
	model       string
	temperature float32
	maxTokens   int
}

func newOpenAIParser(cfg Config) (Parser, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		temperature = 0.2
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}

	return &openAIParser{
		client:      openai.NewClient(cfg.APIKey),
		limiter:     newRateLimiter(cfg.RequestsPerMinute),
		model:       modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Parse asks the model to extract transaction fields from text.
func (p *openAIParser) Parse(ctx context.Context, text string) (model.ParseResult, error) {
	if err := p.limiter.wait(ctx); err != nil {
		return model.ParseResult{}, err
	}

	var resp openai.ChatCompletionResponse
	err := common.WithRetry(ctx, func() error {
		var err error
		resp, err = p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       p.model,
			Temperature: p.temperature,
			MaxTokens:   p.maxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: text},
			},
		})
		if err != nil {
			return classifyAPIError(err)
		}
		return nil
	}, common.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})
	if err != nil {
		return model.ParseResult{}, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return model.ParseResult{}, fmt.Errorf("empty completion response")
	}

	return parseExtraction(resp.Choices[0].Message.Content)
}

// classifyAPIError marks rate limits and server-side failures as
// retryable; anything else (bad request, auth) fails immediately.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
		case apiErr.HTTPStatusCode >= 500:
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return &common.RetryableError{Err: err, Retryable: false}
	}
	// Transport-level errors are worth retrying.
	return &common.RetryableError{Err: err, Retryable: true}
}

// extraction is the wire shape the model is instructed to produce.
type extraction struct {
	Amount      *float64 `json:"amount"`
	Currency    *string  `json:"currency"`
	Vendor      *string  `json:"vendor"`
	Date        *string  `json:"date"`
	ReferenceID *string  `json:"reference_id"`
	Confidence  *float64 `json:"confidence"`
}

// parseExtraction decodes a model response into a ParseResult. Models
// occasionally wrap JSON in prose or code fences despite instructions, so
// the first balanced JSON object in the content is used.
func parseExtraction(content string) (model.ParseResult, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return model.ParseResult{}, fmt.Errorf("no JSON object in response: %q", content)
	}

	var ext extraction
	if err := json.Unmarshal([]byte(raw), &ext); err != nil {
		return model.ParseResult{}, fmt.Errorf("failed to decode response: %w", err)
	}

	var result model.ParseResult
	result.Parsed.Amount = ext.Amount
	if ext.Currency != nil {
		result.Parsed.Currency = strings.ToUpper(strings.TrimSpace(*ext.Currency))
	}
	if ext.Vendor != nil {
		result.Parsed.Vendor = strings.TrimSpace(*ext.Vendor)
	}
	if ext.ReferenceID != nil {
		result.Parsed.ReferenceID = strings.TrimSpace(*ext.ReferenceID)
	}
	if ext.Date != nil {
		if t, err := time.Parse("2006-01-02", strings.TrimSpace(*ext.Date)); err == nil {
			result.Parsed.Date = &t
		}
	}

	switch {
	case ext.Confidence != nil && *ext.Confidence >= 0 && *ext.Confidence <= 1:
		result.Confidence = *ext.Confidence
	case result.Parsed.Amount != nil:
		result.Confidence = fallbackConfidence
	default:
		result.Confidence = 0.3
	}

	return result, nil
}

// extractJSONObject returns the first balanced top-level JSON object in s.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
