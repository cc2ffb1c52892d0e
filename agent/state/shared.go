package state

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrRunCompleted = errors.New("run already completed")
	ErrSlotTaken    = errors.New("worker slot already written")
)

// Phase is the supervisor's position in a run.
type Phase string

const (
	PhaseGathering  Phase = "gathering"
	PhaseFinalizing Phase = "finalizing"
	PhaseDone       Phase = "done"
)

// SharedState is the single record threaded through one orchestration run.
// It is also the checkpoint persisted between rounds.
// - One writer at a time: the orchestration loop.
// - Completed is terminal; no slot may be written afterwards.
type SharedState struct {
	SessionID    string       `json:"session_id"`
	Query        string       `json:"query"`
	DocumentPath string       `json:"document_path,omitempty"`
	Preferences  *Preferences `json:"preferences,omitempty"`

	// One slot per worker kind.
	Document *WorkerResult `json:"document,omitempty"`
	Database *WorkerResult `json:"database,omitempty"`
	Web      *WorkerResult `json:"web,omitempty"`
	Weather  *WorkerResult `json:"weather,omitempty"`

	Phase       Phase        `json:"phase"`
	Completed   bool         `json:"completed"`
	NextAction  string       `json:"next_action,omitempty"`
	Rounds      int          `json:"rounds"`
	Aborted     bool         `json:"aborted,omitempty"`
	Log         []string     `json:"log,omitempty"`
	FinalAnswer *FinalAnswer `json:"final_answer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSharedState(sessionID, query, documentPath string, now time.Time) *SharedState {
	return &SharedState{
		SessionID:    sessionID,
		Query:        query,
		DocumentPath: strings.TrimSpace(documentPath),
		Phase:        PhaseGathering,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

/* ----------------------------- Slot helpers ----------------------------- */

func (s *SharedState) Result(kind WorkerKind) *WorkerResult {
	if s == nil {
		return nil
	}
	switch kind {
	case WorkerDocument:
		return s.Document
	case WorkerDatabase:
		return s.Database
	case WorkerWeb:
		return s.Web
	case WorkerWeather:
		return s.Weather
	default:
		return nil
	}
}

// SetResult writes a worker result into its slot. Each slot is written at
// most once per run and never after completion.
func (s *SharedState) SetResult(res WorkerResult, now time.Time) error {
	if s.Completed {
		return ErrRunCompleted
	}
	if err := res.Validate(); err != nil {
		return err
	}
	if s.HasRun(res.Kind) {
		return fmt.Errorf("%w: %s", ErrSlotTaken, res.Kind)
	}

	r := res
	switch res.Kind {
	case WorkerDocument:
		s.Document = &r
	case WorkerDatabase:
		s.Database = &r
	case WorkerWeb:
		s.Web = &r
	case WorkerWeather:
		s.Weather = &r
	}
	s.UpdatedAt = now
	return nil
}

func (s *SharedState) HasRun(kind WorkerKind) bool {
	return s.Result(kind) != nil
}

// ResultCount is the number of records a worker contributed; failed
// results count as zero.
func (s *SharedState) ResultCount(kind WorkerKind) int {
	r := s.Result(kind)
	if r == nil || !r.Success {
		return 0
	}
	return r.Count
}

// CombinedCount sums the destination-producing sources.
func (s *SharedState) CombinedCount() int {
	return s.ResultCount(WorkerDocument) + s.ResultCount(WorkerDatabase) + s.ResultCount(WorkerWeb)
}

func (s *SharedState) CompletedWorkers() []WorkerKind {
	out := make([]WorkerKind, 0, len(WorkerPriority))
	for _, k := range WorkerPriority {
		if s.HasRun(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s *SharedState) HasDocument() bool {
	return s != nil && strings.TrimSpace(s.DocumentPath) != ""
}

func (s *SharedState) WeatherRequested() bool {
	return s != nil && s.Preferences != nil && s.Preferences.WeatherRequested
}

/* ----------------------------- Lifecycle ----------------------------- */

// Logf appends one status line. The log is append-only.
func (s *SharedState) Logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// Complete stores the final answer and moves the run to its terminal phase.
func (s *SharedState) Complete(answer FinalAnswer, now time.Time) error {
	if s.Completed {
		return ErrRunCompleted
	}
	a := answer
	s.FinalAnswer = &a
	s.Completed = true
	s.Phase = PhaseDone
	s.NextAction = ""
	s.UpdatedAt = now
	return nil
}

// Clone returns a copy safe to hand to a worker. Payload slices are shared
// and must be treated as read-only.
func (s *SharedState) Clone() *SharedState {
	if s == nil {
		return nil
	}
	out := *s
	out.Preferences = s.Preferences.Clone()
	out.Document = cloneResult(s.Document)
	out.Database = cloneResult(s.Database)
	out.Web = cloneResult(s.Web)
	out.Weather = cloneResult(s.Weather)
	out.Log = append([]string(nil), s.Log...)
	if s.FinalAnswer != nil {
		a := *s.FinalAnswer
		out.FinalAnswer = &a
	}
	return &out
}

func cloneResult(r *WorkerResult) *WorkerResult {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

/* ----------------------------- Validation ----------------------------- */

func (s *SharedState) Validate() error {
	if s == nil {
		return ErrNilSharedState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if strings.TrimSpace(s.Query) == "" {
		return fmt.Errorf("session %s: query is empty", s.SessionID)
	}
	switch s.Phase {
	case PhaseGathering, PhaseFinalizing, PhaseDone:
	default:
		return fmt.Errorf("session %s: invalid phase %q", s.SessionID, s.Phase)
	}
	if s.Completed != (s.Phase == PhaseDone) {
		return fmt.Errorf("session %s: completed=%v inconsistent with phase %q", s.SessionID, s.Completed, s.Phase)
	}
	if s.Completed && s.FinalAnswer == nil {
		return fmt.Errorf("session %s: completed without final answer", s.SessionID)
	}
	for _, k := range WorkerPriority {
		r := s.Result(k)
		if r == nil {
			continue
		}
		if r.Kind != k {
			return fmt.Errorf("session %s: slot %s holds %s result", s.SessionID, k, r.Kind)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("session %s: %w", s.SessionID, err)
		}
	}
	return nil
}
