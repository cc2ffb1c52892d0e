package contract

import (
	"context"

	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

// Worker is one of the fixed evidence-gathering units. Execute must not
// mutate snapshot and must report every failure through a success=false
// result instead of an error.
type Worker interface {
	Kind() statex.WorkerKind
	Execute(ctx context.Context, prefs statex.Preferences, snapshot *statex.SharedState) statex.WorkerResult
}

// PreferenceExtractor turns free text into a preference record. It never fails.
type PreferenceExtractor interface {
	Extract(ctx context.Context, text string) statex.Preferences
}

// NextActionOracle proposes the next worker when no deterministic rule applies.
type NextActionOracle interface {
	ChooseNext(ctx context.Context, req NextActionRequest) (NextActionResponse, error)
}

// AnswerSink receives the final answer of a completed run.
type AnswerSink interface {
	Deliver(ctx context.Context, sessionID string, answer statex.FinalAnswer) error
}
