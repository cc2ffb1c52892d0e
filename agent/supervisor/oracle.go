package supervisor

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	oraclex "github.com/tanpawarit/travel-orchestrator/agent/oracle"
)

var _ contractx.NextActionOracle = (*LLMOracle)(nil)

// LLMOracle asks a chat model for the next worker.
type LLMOracle struct {
	structured *oraclex.Structured[contractx.NextActionResponse]
}

func NewLLMOracle(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*LLMOracle, error) {
	s, err := oraclex.NewStructured[contractx.NextActionResponse](ctx, chatModel, systemPrompt, "supervisor.next_action")
	if err != nil {
		return nil, err
	}
	return &LLMOracle{structured: s}, nil
}

func (o *LLMOracle) ChooseNext(ctx context.Context, req contractx.NextActionRequest) (contractx.NextActionResponse, error) {
	return o.structured.Ask(ctx, req)
}
