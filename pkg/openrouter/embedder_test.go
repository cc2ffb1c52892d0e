package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedderOrdersByIndex(t *testing.T) {
	t.Parallel()

	var gotInput []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var body struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotInput = body.Input
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","model":"emb","data":[`+
			`{"object":"embedding","index":1,"embedding":[0,1]},`+
			`{"object":"embedding","index":0,"embedding":[1,0]}],`+
			`"usage":{"prompt_tokens":2,"total_tokens":2}}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	if client == nil {
		t.Fatal("NewClient() = nil")
	}
	emb, err := NewEmbedder(client, "emb")
	if err != nil {
		t.Fatalf("NewEmbedder() error = %v", err)
	}

	vecs, err := emb.EmbedStrings(context.Background(), []string{"beach", "snow"})
	if err != nil {
		t.Fatalf("EmbedStrings() error = %v", err)
	}
	if len(gotInput) != 2 || gotInput[0] != "beach" {
		t.Fatalf("input = %v", gotInput)
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Fatalf("vectors = %v, want index ordering", vecs)
	}
}

func TestNewClientWithoutKey(t *testing.T) {
	t.Parallel()

	if c := NewClient(Config{}); c != nil {
		t.Fatal("NewClient() without key should be nil")
	}
}
