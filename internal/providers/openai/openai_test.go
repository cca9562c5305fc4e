package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/examiner/internal/marking"
	"github.com/JaimeStill/examiner/internal/providers/openai"
)

func TestGenerate(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		} `json:"messages"`
	}

	var path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "test-model",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"annotations\":[]}"}
			}]
		}`)
	}))
	defer srv.Close()

	cfg := openai.Config{BaseURL: srv.URL + "/", APIKey: "test-key", Model: "test-model"}
	require.NoError(t, cfg.Finalize(nil))

	model := openai.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	out, err := model.Generate(context.Background(), marking.MarkingRequest{
		Question:     "3",
		Instructions: "Mark strictly.",
		Lines:        []marking.Line{{ID: "p0-l1", Text: "x = 4"}},
	})

	require.NoError(t, err)
	require.Equal(t, `{"annotations":[]}`, out)
	require.Equal(t, "/chat/completions", path)
	require.Equal(t, "test-model", body.Model)
	require.Len(t, body.Messages, 2)
	require.Equal(t, "system", body.Messages[0].Role)
	require.Equal(t, "user", body.Messages[1].Role)
	require.Contains(t, body.Messages[1].Content, "p0-l1")
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := openai.Config{BaseURL: srv.URL + "/", APIKey: "wrong"}
	require.NoError(t, cfg.Finalize(nil))

	_, err := openai.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).
		Generate(context.Background(), marking.MarkingRequest{Question: "1"})
	require.Error(t, err)
}
