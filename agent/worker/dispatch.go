package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	metricsx "github.com/tanpawarit/travel-orchestrator/pkg/metrics"
)

// Set maps each worker kind to its implementation.
type Set struct {
	workers map[statex.WorkerKind]contractx.Worker
	timeout time.Duration
}

func NewSet(timeout time.Duration, workers ...contractx.Worker) *Set {
	s := &Set{workers: make(map[statex.WorkerKind]contractx.Worker, len(workers)), timeout: timeout}
	for _, w := range workers {
		if w != nil {
			s.workers[w.Kind()] = w
		}
	}
	return s
}

// Run executes the worker for kind against a snapshot of st. It always
// returns a well-formed result: a missing worker, a panic or a timeout
// becomes success=false.
func (s *Set) Run(ctx context.Context, kind statex.WorkerKind, st *statex.SharedState) (res statex.WorkerResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = statex.Failed(kind, fmt.Errorf("worker panicked: %v", r))
		}
		res.Kind = kind
		res.DurationMS = time.Since(start).Milliseconds()
		if err := res.Validate(); err != nil {
			res = statex.Failed(kind, fmt.Errorf("malformed worker result: %w", err))
		}

		metricsx.WorkerExecutions.WithLabelValues(string(kind), strconv.FormatBool(res.Success)).Inc()
		metricsx.WorkerDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

		ev := log.Info()
		if !res.Success {
			ev = log.Warn().Str("error", res.Error)
		}
		ev.Str("session_id", st.SessionID).
			Str("worker", string(kind)).
			Bool("success", res.Success).
			Int("count", res.Count).
			Int64("duration_ms", res.DurationMS).
			Msg("worker finished")
	}()

	w, ok := s.workers[kind]
	if !ok {
		return statex.Failed(kind, fmt.Errorf("%s worker %w", kind, contractx.ErrNotConfigured))
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var prefs statex.Preferences
	if st.Preferences != nil {
		prefs = *st.Preferences.Clone()
	}
	res = w.Execute(runCtx, prefs, st.Clone())
	if !res.Success && res.Error == "" && runCtx.Err() != nil {
		res.Error = runCtx.Err().Error()
	}
	return res
}
