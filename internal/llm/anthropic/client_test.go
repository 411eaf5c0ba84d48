package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-optimizer/internal/llm"
)

func TestGenerateReturnsText(t *testing.T) {
	var gotPath, gotKey string
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"msg_1","type":"message","role":"assistant","model":"claude-3-7-sonnet-latest",
			"content":[{"type":"text","text":"{\"personal_info\":"},{"type":"text","text":"{}}"}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	raw, err := client.Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"personal_info":{}}`, raw)
	assert.True(t, strings.HasSuffix(gotPath, "/v1/messages"), gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, DefaultModel, payload["model"])
	assert.EqualValues(t, defaultMaxTokens, payload["max_tokens"])
}

func TestGenerateMakesOneAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "p")
	var modelErr *llm.ModelError
	require.True(t, errors.As(err, &modelErr))
	assert.Equal(t, llm.ProviderAnthropic, modelErr.Provider)
	assert.EqualValues(t, 1, calls.Load())
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Options{})
	require.Error(t, err)
}
