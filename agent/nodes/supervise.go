package orchestratornode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	aggregatex "github.com/tanpawarit/travel-orchestrator/agent/aggregate"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	supervisorx "github.com/tanpawarit/travel-orchestrator/agent/supervisor"
	metricsx "github.com/tanpawarit/travel-orchestrator/pkg/metrics"
)

// Supervise records the next action, or finalizes the run: aggregate once,
// complete the state, checkpoint it and hand the answer to sink.
func Supervise(
	ctx context.Context,
	in *GraphState,
	sup *supervisorx.Supervisor,
	store statex.Store,
	sink contractx.AnswerSink,
	nowFn func() time.Time,
) (*GraphState, error) {
	if in == nil || in.Shared == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	st := in.Shared
	if st.Completed {
		return in, nil
	}

	d := sup.Decide(ctx, st, in.aborted())
	in.Decision = d
	if !d.Finalize() {
		st.NextAction = d.Action()
		return in, nil
	}

	if d.Rule == supervisorx.RuleAborted {
		st.Aborted = true
	}
	st.Phase = statex.PhaseFinalizing
	answer := aggregatex.Finalize(st)
	if err := st.Complete(answer, nowFn().UTC()); err != nil {
		return nil, err
	}
	st.Logf("finalized by %s: %d recommendations from %s", d.Rule, len(answer.Recommendations), answer.DataSource)

	saveCheckpoint(ctx, st, store)
	deliver(ctx, st.SessionID, answer, sink)

	status := "completed"
	if st.Aborted {
		status = "aborted"
	}
	metricsx.RunsCompleted.WithLabelValues(status).Inc()
	metricsx.RunRounds.Observe(float64(st.Rounds))
	log.Info().
		Str("session_id", st.SessionID).
		Str("rule", string(d.Rule)).
		Int("rounds", st.Rounds).
		Int("total_found", answer.TotalFound).
		Str("data_source", answer.DataSource).
		Msg("run finalized")
	return in, nil
}

func deliver(ctx context.Context, sessionID string, answer statex.FinalAnswer, sink contractx.AnswerSink) {
	if sink == nil {
		return
	}
	if err := sink.Deliver(ctx, sessionID, answer); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("answer delivery failed")
	}
}
