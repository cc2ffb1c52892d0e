// Package supervisor decides what a run does next: dispatch a worker, a
// parallel batch of workers, or finalize.
package supervisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	metricsx "github.com/tanpawarit/travel-orchestrator/pkg/metrics"
)

// SufficientResults is the combined document+database+web count at which
// gathering stops.
const SufficientResults = 5

// Rule names the reason a decision was made.
type Rule string

const (
	RuleAborted     Rule = "aborted"
	RuleWeatherOnly Rule = "weather_only"
	RuleSufficiency Rule = "sufficiency"
	RuleExhaustion  Rule = "exhaustion"
	RuleParallel    Rule = "parallel"
	RuleOracle      Rule = "oracle"
	RuleFallback    Rule = "fallback"
)

// Action values stored in SharedState.NextAction besides a worker kind.
const (
	ActionFinalize = contractx.ActionFinalize
	ActionBatch    = "batch"
)

// Decision is the outcome of one supervisor evaluation. Workers is empty
// when the run should finalize.
type Decision struct {
	Workers []statex.WorkerKind
	Rule    Rule
	Reason  string
}

func (d Decision) Finalize() bool { return len(d.Workers) == 0 }

// Action is the router-facing form of the decision.
func (d Decision) Action() string {
	switch len(d.Workers) {
	case 0:
		return ActionFinalize
	case 1:
		return string(d.Workers[0])
	default:
		return ActionBatch
	}
}

type Supervisor struct {
	oracle   contractx.NextActionOracle
	parallel bool
}

type Option func(*Supervisor)

// WithParallel lets the supervisor dispatch the database, web and weather
// workers as one batch when two or more of them are eligible together.
func WithParallel(enabled bool) Option {
	return func(s *Supervisor) { s.parallel = enabled }
}

// New builds a supervisor. oracle may be nil; every open decision then
// takes the fixed-priority fallback.
func New(oracle contractx.NextActionOracle, opts ...Option) *Supervisor {
	s := &Supervisor{oracle: oracle}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Eligible lists the workers that may still run, in fixed priority order.
func Eligible(st *statex.SharedState) []statex.WorkerKind {
	out := make([]statex.WorkerKind, 0, len(statex.WorkerPriority))
	for _, k := range statex.WorkerPriority {
		if isEligible(st, k) {
			out = append(out, k)
		}
	}
	return out
}

func isEligible(st *statex.SharedState, kind statex.WorkerKind) bool {
	if st.HasRun(kind) {
		return false
	}
	switch kind {
	case statex.WorkerDocument:
		return st.HasDocument()
	case statex.WorkerWeather:
		return st.WeatherRequested()
	default:
		return true
	}
}

// Decide evaluates the rules in order; the first that applies wins. The
// oracle is consulted only when no deterministic rule fires, and its answer
// is checked against the eligible set.
func (s *Supervisor) Decide(ctx context.Context, st *statex.SharedState, aborted bool) Decision {
	d := s.decide(ctx, st, aborted)
	metricsx.SupervisorDecisions.WithLabelValues(string(d.Rule), d.Action()).Inc()
	log.Info().
		Str("session_id", st.SessionID).
		Str("rule", string(d.Rule)).
		Str("action", d.Action()).
		Int("round", st.Rounds).
		Str("reason", d.Reason).
		Msg("supervisor decision")
	return d
}

func (s *Supervisor) decide(ctx context.Context, st *statex.SharedState, aborted bool) Decision {
	if aborted {
		return Decision{Rule: RuleAborted, Reason: "run aborted"}
	}

	combined := st.CombinedCount()
	weatherRan := st.HasRun(statex.WorkerWeather)

	if st.WeatherRequested() && weatherRan && combined == 0 {
		if w := st.Result(statex.WorkerWeather); w != nil && w.Success {
			return Decision{Rule: RuleWeatherOnly, Reason: "weather answered and no other results"}
		}
	}
	if combined >= SufficientResults && (!st.WeatherRequested() || weatherRan) {
		return Decision{Rule: RuleSufficiency, Reason: fmt.Sprintf("%d results gathered", combined)}
	}

	eligible := Eligible(st)
	if len(eligible) == 0 {
		return Decision{Rule: RuleExhaustion, Reason: "no eligible workers"}
	}

	if s.parallel {
		if batch := parallelBatch(eligible); len(batch) >= 2 {
			return Decision{Workers: batch, Rule: RuleParallel, Reason: "independent workers eligible together"}
		}
	}

	return s.ask(ctx, st, eligible)
}

// parallelBatch is empty while the document worker is eligible, since its
// results can make the others unnecessary.
func parallelBatch(eligible []statex.WorkerKind) []statex.WorkerKind {
	var batch []statex.WorkerKind
	for _, k := range eligible {
		if k == statex.WorkerDocument {
			return nil
		}
		batch = append(batch, k)
	}
	return batch
}

func (s *Supervisor) ask(ctx context.Context, st *statex.SharedState, eligible []statex.WorkerKind) Decision {
	if s.oracle == nil {
		return fallback(eligible, "no oracle configured")
	}

	var prefs statex.Preferences
	if st.Preferences != nil {
		prefs = *st.Preferences.Clone()
	}
	req := contractx.NextActionRequest{
		Query:       st.Query,
		Preferences: prefs,
		Counts:      make(map[statex.WorkerKind]int, len(statex.WorkerPriority)),
		Completed:   st.CompletedWorkers(),
		Eligible:    eligible,
	}
	for _, k := range statex.WorkerPriority {
		req.Counts[k] = st.ResultCount(k)
	}

	resp, err := s.oracle.ChooseNext(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("session_id", st.SessionID).Msg("next action oracle failed")
		metricsx.OracleFallbacks.WithLabelValues("error").Inc()
		return fallback(eligible, "oracle error")
	}

	choice := strings.TrimSpace(resp.NextAgent)
	if strings.EqualFold(choice, ActionFinalize) {
		return Decision{Rule: RuleOracle, Reason: resp.Reasoning}
	}
	kind, ok := statex.ParseWorkerKind(choice)
	if !ok {
		log.Warn().Str("session_id", st.SessionID).Str("next_agent", choice).Msg("oracle named unknown worker")
		metricsx.OracleFallbacks.WithLabelValues("unknown").Inc()
		return fallback(eligible, fmt.Sprintf("unknown choice %q", choice))
	}
	for _, k := range eligible {
		if k == kind {
			return Decision{Workers: []statex.WorkerKind{kind}, Rule: RuleOracle, Reason: resp.Reasoning}
		}
	}
	log.Warn().Str("session_id", st.SessionID).Str("next_agent", string(kind)).Msg("oracle chose ineligible worker")
	metricsx.OracleFallbacks.WithLabelValues("ineligible").Inc()
	return fallback(eligible, fmt.Sprintf("%s is not eligible", kind))
}

func fallback(eligible []statex.WorkerKind, reason string) Decision {
	if len(eligible) == 0 {
		return Decision{Rule: RuleFallback, Reason: reason}
	}
	return Decision{Workers: []statex.WorkerKind{eligible[0]}, Rule: RuleFallback, Reason: reason}
}
