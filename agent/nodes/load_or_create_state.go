package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

// LoadOrCreateState resumes the session's checkpoint when one exists. A
// store that cannot be read degrades to a fresh run.
func LoadOrCreateState(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	switch {
	case err == nil:
		if st.Query != in.Query {
			log.Warn().
				Str("session_id", in.SessionID).
				Str("stored_query", st.Query).
				Msg("resuming session with its stored query")
		}
		in.Shared = st
		in.Resumed = true
		return in, nil
	case errors.Is(err, statex.ErrStateNotFound):
	default:
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("checkpoint load failed, starting fresh")
	}

	in.Shared = statex.NewSharedState(in.SessionID, in.Query, in.DocumentPath, in.Now)
	return in, nil
}
