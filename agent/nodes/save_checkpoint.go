package orchestratornode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	metricsx "github.com/tanpawarit/travel-orchestrator/pkg/metrics"
)

// SaveCheckpoint validates the shared state and persists it. An invalid
// state fails the run; a store error only costs resumability.
func SaveCheckpoint(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	nowFn func() time.Time,
) (*GraphState, error) {
	if in == nil || in.Shared == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Shared.UpdatedAt = nowFn().UTC()
	if err := in.Shared.Validate(); err != nil {
		return nil, fmt.Errorf("state validation failed: %w", err)
	}
	saveCheckpoint(ctx, in.Shared, store)
	return in, nil
}

func saveCheckpoint(ctx context.Context, st *statex.SharedState, store statex.Store) {
	if err := store.Save(ctx, st); err != nil {
		metricsx.CheckpointErrors.Inc()
		log.Warn().Err(err).Str("session_id", st.SessionID).Msg("checkpoint save failed")
		return
	}
	log.Debug().
		Str("session_id", st.SessionID).
		Str("phase", string(st.Phase)).
		Int("round", st.Rounds).
		Msg("checkpoint saved")
}
