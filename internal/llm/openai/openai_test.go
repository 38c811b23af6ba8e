package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tahcohcat/liferpg-web/config"
	"github.com/tahcohcat/liferpg-web/internal/llm/chat"
)

func TestGenerateResponseSendsConversation(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Take the long road."}}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	c, err := NewClient(&config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	reply, err := c.GenerateResponse(context.Background(), chat.Encode(chat.System("rules"), chat.User("help")))
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Take the long road." {
		t.Fatalf("reply=%q", reply)
	}
	if got.Model != "gpt-test" || len(got.Messages) != 2 || got.Messages[1].Content != "help" {
		t.Fatalf("request=%+v", got)
	}
}

func TestGenerateResponseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := NewClient(&config.OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.GenerateResponse(context.Background(), "plain prompt"); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err=%v, want status error", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(&config.OpenAIConfig{}); err == nil {
		t.Fatalf("missing key should fail")
	}
}

func TestIsModelAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-a"},{"id":"gpt-b"}]}`))
	}))
	defer srv.Close()

	c, _ := NewClient(&config.OpenAIConfig{APIKey: "k", Model: "gpt-b", BaseURL: srv.URL + "/"})
	if err := c.IsModelAvailable(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	c, _ = NewClient(&config.OpenAIConfig{APIKey: "k", Model: "gpt-z", BaseURL: srv.URL})
	if err := c.IsModelAvailable(context.Background()); err == nil || !strings.Contains(err.Error(), "gpt-a") {
		t.Fatalf("err=%v, want list of models", err)
	}
}
