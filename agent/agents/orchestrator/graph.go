package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/travel-orchestrator/agent/nodes"
	routerx "github.com/tanpawarit/travel-orchestrator/agent/router"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

const (
	nodeValidateRequest    = "validate_request"
	nodeLoadOrCreateState  = "load_or_create_state"
	nodeExtractPreferences = "extract_preferences"
	nodeSaveCheckpoint     = "save_checkpoint"
)

// compileRunGraph builds the supervisor loop:
//
//	validate_request -> load_or_create_state -> extract_preferences -> save_checkpoint
//	save_checkpoint -> supervisor -(router)-> worker | parallel_round | END
//	worker | parallel_round -> save_checkpoint
func (o *Orchestrator) compileRunGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, *nodex.GraphState], error) {
	graph := compose.NewGraph[nodex.GraphInput, *nodex.GraphState]()

	if err := graph.AddLambdaNode(nodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateRequest, err)
	}

	if err := graph.AddLambdaNode(nodeLoadOrCreateState,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateState(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeLoadOrCreateState, err)
	}

	if err := graph.AddLambdaNode(nodeExtractPreferences,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractPreferences(ctx, in, o.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeExtractPreferences, err)
	}

	if err := graph.AddLambdaNode(nodeSaveCheckpoint,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveCheckpoint(ctx, in, o.store, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeSaveCheckpoint, err)
	}

	if err := graph.AddLambdaNode(routerx.NodeSupervisor,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Supervise(ctx, in, o.supervisor, o.store, o.sink, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", routerx.NodeSupervisor, err)
	}

	for _, kind := range statex.WorkerPriority {
		kind := kind
		node := routerx.NodeFor(kind)
		if err := graph.AddLambdaNode(node,
			compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
				return nodex.RunWorker(ctx, in, o.workers, kind, o.now)
			}),
		); err != nil {
			return nil, fmt.Errorf("add node %s: %w", node, err)
		}
	}

	if err := graph.AddLambdaNode(routerx.NodeParallelRound,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RunParallelRound(ctx, in, o.workers, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", routerx.NodeParallelRound, err)
	}

	edges := [][2]string{
		{compose.START, nodeValidateRequest},
		{nodeValidateRequest, nodeLoadOrCreateState},
		{nodeLoadOrCreateState, nodeExtractPreferences},
		{nodeExtractPreferences, nodeSaveCheckpoint},
		{nodeSaveCheckpoint, routerx.NodeSupervisor},
		{routerx.NodeParallelRound, nodeSaveCheckpoint},
	}
	for _, kind := range statex.WorkerPriority {
		edges = append(edges, [2]string{routerx.NodeFor(kind), nodeSaveCheckpoint})
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	// Re-evaluation goes through save_checkpoint instead of a supervisor
	// self-loop.
	targets := make(map[string]bool, len(routerx.Targets))
	for _, t := range routerx.Targets {
		if t == routerx.NodeSupervisor {
			t = nodeSaveCheckpoint
		}
		targets[t] = true
	}
	branch := compose.NewGraphBranch(func(ctx context.Context, in *nodex.GraphState) (string, error) {
		next := routerx.Route(in.Shared)
		if next == routerx.NodeSupervisor {
			next = nodeSaveCheckpoint
		}
		return next, nil
	}, targets)
	if err := graph.AddBranch(routerx.NodeSupervisor, branch); err != nil {
		return nil, fmt.Errorf("add router branch: %w", err)
	}

	runner, err := graph.Compile(ctx,
		compose.WithGraphName("orchestrator.run"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
		compose.WithMaxRunSteps(o.maxRunSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
