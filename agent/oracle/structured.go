package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
)

// Structured asks the model one question and parses the answer as T.
// Failures come back as errors wrapping contract.ErrModelInvoke; callers
// decide how to degrade.
type Structured[T any] struct {
	name   string
	runner compose.Runnable[map[string]any, T]
}

func NewStructured[T any](ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt, name string) (*Structured[T], error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: %s: chat model is nil", contractx.ErrValidation, name)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: %s", contractx.ErrPromptMissing, name)
	}
	runner, err := compileStructuredLLMGraph[T](ctx, chatModel, systemPrompt, name)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s: %v", contractx.ErrModelInvoke, name, err)
	}
	return &Structured[T]{name: name, runner: runner}, nil
}

// Ask marshals payload to JSON and sends it as the user message.
func (s *Structured[T]) Ask(ctx context.Context, payload any) (T, error) {
	var zero T
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("%w: marshal %s payload: %v", contractx.ErrValidation, s.name, err)
	}

	out, err := s.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return zero, fmt.Errorf("%w: %s invoke: %v", contractx.ErrModelInvoke, s.name, err)
	}
	return out, nil
}
