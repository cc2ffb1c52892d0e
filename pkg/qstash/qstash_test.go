package qstash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{URL: "https://qstash.upstash.io"}); err == nil {
		t.Fatal("NewClient() error = nil, want missing token error")
	}
	if _, err := NewClient(Config{URL: "::bad", Token: "t"}); err == nil {
		t.Fatal("NewClient() error = nil, want invalid url error")
	}
}

func TestPublishPostsToDestination(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotForward string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotForward = r.Header.Get("Upstash-Forward-X-Session-Id")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"messageId":"msg_1"}`)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{URL: server.URL, Token: "tok"})
	resp, err := client.Publish(context.Background(), "travel-answers", map[string]any{"summary": "ok"},
		map[string]string{"X-Session-Id": "s-1"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if resp.MessageID != "msg_1" {
		t.Fatalf("MessageID = %q, want msg_1", resp.MessageID)
	}
	if gotPath != "/v2/publish/travel-answers" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotForward != "s-1" {
		t.Fatalf("forward header = %q, want s-1", gotForward)
	}
	if gotBody["summary"] != "ok" {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestPublishRejectsEmptyDestination(t *testing.T) {
	t.Parallel()

	client := MustNew(Config{URL: "https://qstash.upstash.io", Token: "tok"})
	if _, err := client.Publish(context.Background(), " ", nil, nil); err == nil {
		t.Fatal("Publish() error = nil, want destination error")
	}
}
