package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTokenCeiling = 8192

// GeminiConfig configures the Gemini REST client.
type GeminiConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	TokenCeiling int
}

// GeminiClient implements Client against the Gemini generateContent API.
type GeminiClient struct {
	apiKey       string
	baseURL      string
	model        string
	tokenCeiling int
	httpClient   *http.Client
}

// NewGeminiClient builds a client with provider defaults filled in.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-1.5-pro"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	ceiling := cfg.TokenCeiling
	if ceiling <= 0 {
		ceiling = defaultTokenCeiling
	}
	return &GeminiClient{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		model:        model,
		tokenCeiling: ceiling,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// EffectiveMaxTokens returns the budget after provider-ceiling capping.
// Oversized requests are capped, never rejected.
func (c *GeminiClient) EffectiveMaxTokens(requested int) int {
	if requested <= 0 || requested > c.tokenCeiling {
		return c.tokenCeiling
	}
	return requested
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Complete performs a single generateContent call. No retries here; failures
// come back classified for the caller to act on.
func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: c.EffectiveMaxTokens(maxTokens),
			Temperature:     0.2,
		},
	}
	if systemPrompt != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", NewError(KindUnclassified, "encode request", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", NewError(KindUnclassified, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewError(KindNetwork, "read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, raw)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", NewError(KindUnclassified, "decode response", err)
	}
	if parsed.Error != nil {
		return "", classifyStatus(parsed.Error.Code, raw)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", NewError(KindUnclassified, "empty completion", nil)
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, "request deadline exceeded", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(KindTimeout, "request timed out", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NewError(KindNetwork, "transport failure", err)
	}
	return NewError(KindUnclassified, "request failed", err)
}

func classifyStatus(status int, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	switch {
	case status == http.StatusTooManyRequests:
		return NewError(KindRateLimited, msg, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewError(KindAuth, msg, nil)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return NewError(KindTimeout, msg, nil)
	case status >= 500:
		return NewError(KindUnavailable, msg, nil)
	}
	return NewError(KindUnclassified, fmt.Sprintf("status %d: %s", status, msg), nil)
}
