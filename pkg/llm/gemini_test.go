package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GeminiClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewGeminiClient(GeminiConfig{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		Model:        "test-model",
		TokenCeiling: 4096,
	})
	return client, server
}

func TestGeminiClientCompleteSuccess(t *testing.T) {
	var captured geminiRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "hello "}, {"text": "world"}}}},
			},
		})
	})

	out, err := client.Complete(context.Background(), "system", "user", 1024)
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "system", captured.SystemInstruction.Parts[0].Text)
	assert.Equal(t, 1024, captured.GenerationConfig.MaxOutputTokens)
}

func TestGeminiClientCapsTokenBudget(t *testing.T) {
	var captured geminiRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "ok"}}}},
			},
		})
	})

	_, err := client.Complete(context.Background(), "", "user", 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, 4096, captured.GenerationConfig.MaxOutputTokens, "oversized budgets are capped, not rejected")
	assert.Equal(t, 4096, client.EffectiveMaxTokens(1_000_000))
	assert.Equal(t, 4096, client.EffectiveMaxTokens(0))
	assert.Equal(t, 512, client.EffectiveMaxTokens(512))
}

func TestGeminiClientClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"rate limited", http.StatusTooManyRequests, KindRateLimited},
		{"unauthorized", http.StatusUnauthorized, KindAuth},
		{"forbidden", http.StatusForbidden, KindAuth},
		{"unavailable", http.StatusServiceUnavailable, KindUnavailable},
		{"bad gateway", http.StatusBadGateway, KindUnavailable},
		{"gateway timeout", http.StatusGatewayTimeout, KindTimeout},
		{"teapot", http.StatusTeapot, KindUnclassified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			_, err := client.Complete(context.Background(), "", "user", 128)
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestRetryableClassification(t *testing.T) {
	assert.True(t, Retryable(NewError(KindTimeout, "", nil)))
	assert.True(t, Retryable(NewError(KindRateLimited, "", nil)))
	assert.True(t, Retryable(NewError(KindUnavailable, "", nil)))
	assert.True(t, Retryable(NewError(KindNetwork, "", nil)))
	assert.False(t, Retryable(NewError(KindAuth, "", nil)))
	assert.False(t, Retryable(NewError(KindUnclassified, "", nil)))
	assert.False(t, Retryable(assert.AnError))
}
