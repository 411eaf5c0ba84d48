package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"resume-optimizer/internal/llm"
)

type stubModels struct {
	resp      *genai.GenerateContentResponse
	err       error
	gotModel  string
	gotConfig *genai.GenerateContentConfig
	gotText   string
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.gotModel = model
	s.gotConfig = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		s.gotText = contents[0].Parts[0].Text
	}
	return s.resp, s.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGenerateReturnsText(t *testing.T) {
	stub := &stubModels{resp: textResponse(` {"personal_info":{}} `)}
	client := &Client{models: stub, model: DefaultModel}

	raw, err := client.Generate(context.Background(), "prompt body")
	require.NoError(t, err)
	assert.Equal(t, `{"personal_info":{}}`, raw)
	assert.Equal(t, DefaultModel, stub.gotModel)
	assert.Equal(t, "prompt body", stub.gotText)
	assert.Equal(t, "application/json", stub.gotConfig.ResponseMIMEType)
}

func TestGenerateWrapsErrors(t *testing.T) {
	client := &Client{models: &stubModels{err: context.DeadlineExceeded}, model: DefaultModel}
	_, err := client.Generate(context.Background(), "p")
	var modelErr *llm.ModelError
	require.True(t, errors.As(err, &modelErr))
	assert.Equal(t, llm.ProviderGemini, modelErr.Provider)
	assert.True(t, modelErr.Timeout())

	client = &Client{models: &stubModels{resp: &genai.GenerateContentResponse{}}, model: DefaultModel}
	_, err = client.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	require.Error(t, err)
}

func TestClientAgainstHTTPServer(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ok\":true}"}]}}]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := NewClient(ctx, Options{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	raw, err := client.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, raw)
	assert.True(t, strings.HasSuffix(gotPath, "models/"+DefaultModel+":generateContent"), gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotBody, "contents")
}
