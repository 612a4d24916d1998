package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatSendsHistoryAndTrimsReply(t *testing.T) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"  Sejak kapan demamnya?\n"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "", srv.URL+"/v1")
	reply, err := c.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: "patient", Content: "halo"},
		{Role: RoleAssistant, Content: "Halo, ada keluhan apa?"},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "Sejak kapan demamnya?" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if req.Model != DefaultModel {
		t.Fatalf("expected default model, got %q", req.Model)
	}
	want := []string{"system", "user", "assistant"}
	if len(req.Messages) != len(want) {
		t.Fatalf("expected %d messages, got %+v", len(want), req.Messages)
	}
	for i, role := range want {
		if req.Messages[i].Role != role {
			t.Fatalf("message %d: expected role %q, got %q", i, role, req.Messages[i].Role)
		}
	}
}

func TestChatWrapsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("bad", "gpt-4o", srv.URL+"/v1")
	if _, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Fatal("expected error")
	}
}
