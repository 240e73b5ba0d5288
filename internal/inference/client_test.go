package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, retries uint) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		Provider:   ProviderOpenAI,
		Endpoint:   server.URL + "/v1",
		APIKey:     "test-key",
		Retries:    retries,
		RetryDelay: time.Millisecond,
	}, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestComplete_SendsFullPrompt(t *testing.T) {
	slides := strings.Repeat("Lemma 3.1: every tree with n vertices has n-1 edges.\n", 20000)
	user := "--- BEGIN SLIDE TEXT ---\n" + slides + "\n--- END SLIDE TEXT ---"

	var got capturedRequest
	var auth, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completion(`{"main_topics":[]}`))
	}, 0)

	content, err := client.Complete(context.Background(), Request{
		System:      "You are AiTA.",
		User:        user,
		Model:       "gpt-4.1",
		Temperature: 0.2,
		MaxTokens:   4096,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != `{"main_topics":[]}` {
		t.Errorf("content = %q", content)
	}

	if path != "/v1/chat/completions" {
		t.Errorf("path = %q", path)
	}
	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Model != "gpt-4.1" || got.MaxTokens != 4096 || got.Temperature != 0.2 {
		t.Errorf("unexpected request parameters: model=%q max_tokens=%d temperature=%v", got.Model, got.MaxTokens, got.Temperature)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != "You are AiTA." {
		t.Errorf("unexpected system message: %+v", got.Messages[0])
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != user {
		t.Errorf("user message was altered: got %d bytes, want %d", len(got.Messages[1].Content), len(user))
	}
}

func TestComplete_OmitsMaxTokensWhenUnset(t *testing.T) {
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		fmt.Fprint(w, completion("ok"))
	}, 0)

	if _, err := client.Complete(context.Background(), Request{User: "u", Model: "m", Temperature: 0.2}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if _, ok := raw["max_tokens"]; ok {
		t.Errorf("max_tokens should be omitted, got %v", raw["max_tokens"])
	}
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
			return
		}
		fmt.Fprint(w, completion("done"))
	}, 2)

	content, err := client.Complete(context.Background(), Request{User: "u", Model: "m"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != "done" || calls.Load() != 3 {
		t.Errorf("content = %q after %d calls", content, calls.Load())
	}
}

func TestComplete_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}, 0)

	if _, err := client.Complete(context.Background(), Request{User: "u", Model: "m"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestComplete_DoesNotRetryAuthErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid x-api-key","type":"authentication_error"}}`)
	}, 3)

	_, err := client.Complete(context.Background(), Request{User: "u", Model: "m"})
	if err == nil {
		t.Fatal("expected error")
	}
	if Retryable(err) {
		t.Errorf("auth error should not be retryable: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestComplete_NoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","model":"m","choices":[]}`)
	}, 2)

	_, err := client.Complete(context.Background(), Request{User: "u", Model: "m"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestComplete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{Endpoint: server.URL, APIKey: "k", Timeout: 50 * time.Millisecond}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Complete(context.Background(), Request{User: "u", Model: "m"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNew(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		if _, err := New(Config{Provider: "cohere", APIKey: "k"}, nil); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		_, err := New(Config{Provider: ProviderAnthropic}, nil)
		if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
			t.Fatalf("expected error naming the env var, got %v", err)
		}
	})

	t.Run("key from environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "from-env")
		client, err := New(Config{Provider: ProviderOpenAI}, nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if client.cfg.APIKey != "from-env" {
			t.Errorf("APIKey = %q", client.cfg.APIKey)
		}
	})
}

func TestProviders(t *testing.T) {
	if got := Providers(); len(got) != 2 || got[0] != ProviderAnthropic || got[1] != ProviderOpenAI {
		t.Errorf("Providers() = %v", got)
	}
	if APIKeyEnv(ProviderAnthropic) != "ANTHROPIC_API_KEY" {
		t.Errorf("unexpected anthropic key env")
	}
	if KnownProvider("mistral") {
		t.Errorf("mistral should not be known")
	}
}
