package orchestratornode

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	workerx "github.com/tanpawarit/travel-orchestrator/agent/worker"
	"golang.org/x/sync/errgroup"
)

// RunWorker executes one worker and writes its result into the slot it
// owns. This is the only place results enter the shared state.
func RunWorker(
	ctx context.Context,
	in *GraphState,
	workers *workerx.Set,
	kind statex.WorkerKind,
	nowFn func() time.Time,
) (*GraphState, error) {
	if in == nil || in.Shared == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	res := workers.Run(ctx, kind, in.Shared)
	if err := record(in.Shared, res, nowFn()); err != nil {
		return nil, err
	}
	in.Shared.Rounds++
	in.Shared.NextAction = ""
	return in, nil
}

// RunParallelRound executes the decided batch concurrently. Workers read
// the same snapshot; results are written after all of them have returned,
// in priority order.
func RunParallelRound(
	ctx context.Context,
	in *GraphState,
	workers *workerx.Set,
	nowFn func() time.Time,
) (*GraphState, error) {
	if in == nil || in.Shared == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	batch := in.Decision.Workers
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: parallel round without workers", contractx.ErrValidation)
	}

	results := make([]statex.WorkerResult, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range batch {
		i, kind := i, kind
		g.Go(func() error {
			results[i] = workers.Run(gctx, kind, in.Shared)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := nowFn()
	for _, res := range results {
		if err := record(in.Shared, res, now); err != nil {
			return nil, err
		}
	}
	in.Shared.Rounds++
	in.Shared.NextAction = ""
	return in, nil
}

func record(st *statex.SharedState, res statex.WorkerResult, now time.Time) error {
	if err := st.SetResult(res, now); err != nil {
		return fmt.Errorf("record %s result: %w", res.Kind, err)
	}
	if res.Success {
		st.Logf("%s: %d results", res.Kind, res.Count)
	} else {
		st.Logf("%s failed: %s", res.Kind, res.Error)
	}
	return nil
}
