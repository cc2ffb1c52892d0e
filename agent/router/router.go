// Package router maps the supervisor's recorded action onto the next graph
// node.
package router

import (
	"github.com/cloudwego/eino/compose"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	supervisorx "github.com/tanpawarit/travel-orchestrator/agent/supervisor"
)

// Node keys shared by the router and the orchestration graph.
const (
	NodeSupervisor    = "supervisor"
	NodeDocument      = "document"
	NodeDatabase      = "database"
	NodeWeb           = "web"
	NodeWeather       = "weather"
	NodeParallelRound = "parallel_round"
)

// Targets is every node Route can return.
var Targets = []string{NodeSupervisor, NodeDocument, NodeDatabase, NodeWeb, NodeWeather, NodeParallelRound, compose.END}

var workerNodes = map[statex.WorkerKind]string{
	statex.WorkerDocument: NodeDocument,
	statex.WorkerDatabase: NodeDatabase,
	statex.WorkerWeb:      NodeWeb,
	statex.WorkerWeather:  NodeWeather,
}

// Route returns the next node for st. A completed run ends; a single worker
// that has not run yet goes to its node; a batch goes to the parallel
// round. Anything else returns to the supervisor for re-evaluation.
func Route(st *statex.SharedState) string {
	if st == nil || st.Completed || st.Phase == statex.PhaseDone {
		return compose.END
	}
	switch st.NextAction {
	case supervisorx.ActionBatch:
		return NodeParallelRound
	case supervisorx.ActionFinalize, "":
		return NodeSupervisor
	}
	kind, ok := statex.ParseWorkerKind(st.NextAction)
	if !ok || st.HasRun(kind) {
		return NodeSupervisor
	}
	return workerNodes[kind]
}

// NodeFor returns the graph node key of a worker kind.
func NodeFor(kind statex.WorkerKind) string {
	return workerNodes[kind]
}
