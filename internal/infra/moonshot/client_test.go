package moonshot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newFakeEndpoint(t *testing.T, reply string, gotBody *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if gotBody != nil {
			json.NewDecoder(r.Body).Decode(gotBody)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "moonshot-v1-8k",
			"choices": []map[string]interface{}{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SummarizeUnread(t *testing.T) {
	var body map[string]interface{}
	srv := newFakeEndpoint(t, "  Client asks about the order  ", &body)

	c := NewClientWithBaseURL("key", "", srv.URL+"/v1")
	got, err := c.SummarizeUnread(context.Background(), "Order #12", "[10:00] u1: where is it?")
	if err != nil {
		t.Fatalf("SummarizeUnread failed: %v", err)
	}
	if got != "Client asks about the order" {
		t.Errorf("Expected trimmed reply, got %q", got)
	}
	if body["model"] != "moonshot-v1-8k" {
		t.Errorf("Expected default model, got %v", body["model"])
	}
	messages, _ := body["messages"].([]interface{})
	if len(messages) != 2 {
		t.Fatalf("Expected system and user messages, got %d", len(messages))
	}
	user, _ := messages[1].(map[string]interface{})
	if content, _ := user["content"].(string); !strings.Contains(content, "Order #12") {
		t.Errorf("Expected chat title in prompt, got %q", content)
	}
}

func TestClient_SummarizeUnread_EmptyTranscript(t *testing.T) {
	c := NewClientWithBaseURL("key", "m", "http://127.0.0.1:1")
	got, err := c.SummarizeUnread(context.Background(), "t", "")
	if err != nil || got != "" {
		t.Errorf("Expected no call for empty transcript, got %q, %v", got, err)
	}
}

func TestClient_Chat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("key", "m", srv.URL)
	if _, err := c.Chat(context.Background(), "s", "u", 10); err == nil {
		t.Error("Expected error without choices")
	}
}
