package worker

import (
	"context"
	"errors"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	tavilyx "github.com/tanpawarit/travel-orchestrator/pkg/tavily"
)

type fakeToolCallingModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
}

func newFakeModel(contents ...string) *fakeToolCallingModel {
	f := &fakeToolCallingModel{}
	for _, c := range contents {
		f.responses = append(f.responses, &schema.Message{Role: schema.Assistant, Content: c})
	}
	return f
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

func (f *fakeToolCallingModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

type fakeSearch struct {
	mu      sync.Mutex
	resp    *tavilyx.SearchResponse
	err     error
	queries []string
	limits  []int
}

func (f *fakeSearch) Search(ctx context.Context, query string, maxResults int) (*tavilyx.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, maxResults)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return &tavilyx.SearchResponse{}, nil
	}
	return f.resp, nil
}
