package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/config"
	"github.com/formloom/forms-backend/internal/entity"
)

func geminiTestConfig(baseURL string) config.GeminiConnectorConfig {
	return config.GeminiConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        2 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: time.Second,
			Url:                   baseURL,
		},
		Model:  "gemini-2.5-flash-preview-05-20",
		APIKey: "test-key",
	}
}

func geminiReply(text string) string {
	reply := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(reply)
	return string(raw)
}

func TestGeminiGenerateSchema_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply("```json\n{\"fields\": [{\"name\": \"email\", \"label\": \"Email\", \"type\": \"email\", \"validation\": \"required\"}]}\n```")))
	}))
	defer server.Close()

	connector := NewGeminiConnector(geminiTestConfig(server.URL), "", zap.NewNop())

	schema, err := connector.GenerateSchema(context.Background(), "a contact form")

	require.NoError(t, err)
	require.NotNil(t, schema)
	assert.False(t, schema.IsClarification())
	require.Len(t, schema.Fields, 1)
	assert.Equal(t, "email", schema.Fields[0].Name)
	assert.Equal(t, entity.FieldTypeEmail, schema.Fields[0].Type)

	assert.Equal(t, "/v1beta/models/gemini-2.5-flash-preview-05-20:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.True(t, strings.HasSuffix(gotReq.Contents[0].Parts[0].Text, "User Request: a contact form"))
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "CONTRADICTION HANDLING")
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMimeType)
	assert.NotEmpty(t, gotReq.GenerationConfig.ResponseSchema)
}

func TestGeminiGenerateSchema_ClarificationPassedThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply(`{"clarification": "Should the anonymous form still collect emails?"}`)))
	}))
	defer server.Close()

	connector := NewGeminiConnector(geminiTestConfig(server.URL), "", zap.NewNop())

	schema, err := connector.GenerateSchema(context.Background(), "anonymous form with email")

	require.NoError(t, err)
	require.True(t, schema.IsClarification())
	assert.Equal(t, "Should the anonymous form still collect emails?", *schema.Clarification)
	assert.Empty(t, schema.Fields)
}

func TestGeminiGenerateSchema_TransportFailureBecomesClarification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	connector := NewGeminiConnector(geminiTestConfig(server.URL), "", zap.NewNop())

	schema, err := connector.GenerateSchema(context.Background(), "a form")

	require.NoError(t, err)
	require.True(t, schema.IsClarification())
	assert.True(t, strings.HasPrefix(*schema.Clarification, "Cloud API Connection Error (Gemini):"))
}

func TestGeminiGenerateSchema_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	connector := NewGeminiConnector(geminiTestConfig(server.URL), "", zap.NewNop())

	schema, err := connector.GenerateSchema(context.Background(), "a form")

	require.NoError(t, err)
	require.True(t, schema.IsClarification())
	assert.Equal(t, "Cloud API returned an unexpected response structure. Check API key permissions.", *schema.Clarification)
}

func TestGeminiGenerateSchema_MalformedReplyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply("I am sorry, I cannot help with that.")))
	}))
	defer server.Close()

	connector := NewGeminiConnector(geminiTestConfig(server.URL), "", zap.NewNop())

	schema, err := connector.GenerateSchema(context.Background(), "a form")

	require.NoError(t, err)
	require.True(t, schema.IsClarification())
	assert.True(t, strings.HasPrefix(*schema.Clarification, "Gemini API Response Error:"))
}

func TestGeminiGenerateSchema_PromptOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, strings.HasPrefix(req.Contents[0].Parts[0].Text, "custom instructions"))

		_, _ = w.Write([]byte(geminiReply(`{"fields": []}`)))
	}))
	defer server.Close()

	connector := NewGeminiConnector(geminiTestConfig(server.URL), "custom instructions", zap.NewNop())

	_, err := connector.GenerateSchema(context.Background(), "a form")

	require.NoError(t, err)
}
