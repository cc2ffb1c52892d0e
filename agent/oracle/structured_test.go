package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
)

type pick struct {
	NextAgent string `json:"next_agent"`
	Reasoning string `json:"reasoning"`
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"{\"a\":1}":                 "{\"a\":1}",
		"```json\n{\"a\":1}\n```":   "{\"a\":1}",
		"```\n[1,2]\n```":           "[1,2]",
		"  ```JSON\n{\"a\":1}```  ": "{\"a\":1}",
		"```{\"a\":1}```":           "{\"a\":1}",
		"```json {\"a\":1}```":      "{\"a\":1}",
		"```{\n\"a\":1}\n```":       "{\n\"a\":1}",
		"```json\n{\"a\":1}":        "{\"a\":1}",

		"Here you go: ```json {\"a\":1}```":            "{\"a\":1}",
		"Sure.\n```json\n{\"a\":1}\n```\nLet me know.": "{\"a\":1}",
	}
	for in, want := range cases {
		if got := StripCodeFence(in); got != want {
			t.Fatalf("StripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStructuredAskParsesFencedJSON(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Role: schema.Assistant, Content: "```json\n{\"next_agent\":\"database\",\"reasoning\":\"curated first\"}\n```"},
		},
	}

	s, err := NewStructured[pick](context.Background(), fake, "choose {{\"next_agent\": ...}}", "test.pick")
	if err != nil {
		t.Fatalf("NewStructured() error = %v", err)
	}

	out, err := s.Ask(context.Background(), map[string]any{"available": []string{"database"}})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if out.NextAgent != "database" {
		t.Fatalf("NextAgent = %q, want database", out.NextAgent)
	}

	if len(fake.inputs) != 1 || len(fake.inputs[0]) != 2 {
		t.Fatalf("model inputs = %v, want system+user", fake.inputs)
	}
	if !strings.Contains(fake.inputs[0][0].Content, `{"next_agent": ...}`) {
		t.Fatalf("system prompt braces not unescaped: %q", fake.inputs[0][0].Content)
	}
	if !strings.Contains(fake.inputs[0][1].Content, `"available":["database"]`) {
		t.Fatalf("user message = %q, want JSON payload", fake.inputs[0][1].Content)
	}
}

func TestStructuredAskMalformedOutput(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{{Role: schema.Assistant, Content: "I think you should search the web."}},
	}
	s, err := NewStructured[pick](context.Background(), fake, "choose", "test.pick")
	if err != nil {
		t.Fatalf("NewStructured() error = %v", err)
	}

	_, err = s.Ask(context.Background(), nil)
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("Ask() error = %v, want ErrModelInvoke", err)
	}
}

func TestStructuredAskModelError(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: errors.New("rate limited")}
	s, err := NewStructured[pick](context.Background(), fake, "choose", "test.pick")
	if err != nil {
		t.Fatalf("NewStructured() error = %v", err)
	}
	if _, err := s.Ask(context.Background(), nil); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("Ask() error = %v, want ErrModelInvoke", err)
	}
}

func TestNewStructuredRequiresPrompt(t *testing.T) {
	t.Parallel()

	_, err := NewStructured[pick](context.Background(), &fakeToolCallingModel{}, "  ", "test.pick")
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("NewStructured() error = %v, want ErrPromptMissing", err)
	}
}
