package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
)

// ExtractPreferences runs once per session; a resumed run keeps the
// preferences stored in its checkpoint.
func ExtractPreferences(
	ctx context.Context,
	in *GraphState,
	extractor contractx.PreferenceExtractor,
) (*GraphState, error) {
	if in == nil || in.Shared == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if in.Shared.Preferences != nil || in.Shared.Completed {
		return in, nil
	}

	prefs := extractor.Extract(ctx, in.Shared.Query)
	in.Shared.Preferences = &prefs
	in.Shared.Logf("preferences extracted: weather=%v activities=%d", prefs.WeatherRequested, len(prefs.Activities))
	return in, nil
}
