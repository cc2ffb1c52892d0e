package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	nodex "github.com/tanpawarit/travel-orchestrator/agent/nodes"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	supervisorx "github.com/tanpawarit/travel-orchestrator/agent/supervisor"
	workerx "github.com/tanpawarit/travel-orchestrator/agent/worker"
)

var (
	ErrInvalidQuery   = nodex.ErrInvalidQuery
	ErrInvalidSession = nodex.ErrInvalidSession
)

const defaultMaxRunSteps = 40

type Config struct {
	Parallel      bool          `envconfig:"PARALLEL" default:"false"`
	MaxRunSteps   int           `envconfig:"MAX_RUN_STEPS" default:"40"`
	WorkerTimeout time.Duration `envconfig:"WORKER_TIMEOUT" default:"90s"`
}

// Deps are the collaborators of a run. Oracle and Sink are optional; a
// missing worker reports itself as not configured when dispatched.
type Deps struct {
	Store     statex.Store
	Extractor contractx.PreferenceExtractor
	Oracle    contractx.NextActionOracle
	Workers   []contractx.Worker
	Sink      contractx.AnswerSink
}

type Orchestrator struct {
	store      statex.Store
	extractor  contractx.PreferenceExtractor
	supervisor *supervisorx.Supervisor
	workers    *workerx.Set
	sink       contractx.AnswerSink

	graphRunner compose.Runnable[nodex.GraphInput, *nodex.GraphState]
	maxRunSteps int

	now func() time.Time
}

func New(deps Deps, cfg Config) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, errors.New("state store is required")
	}
	if deps.Extractor == nil {
		return nil, errors.New("preference extractor is required")
	}

	maxRunSteps := cfg.MaxRunSteps
	if maxRunSteps <= 0 {
		maxRunSteps = defaultMaxRunSteps
	}

	o := &Orchestrator{
		store:       deps.Store,
		extractor:   deps.Extractor,
		supervisor:  supervisorx.New(deps.Oracle, supervisorx.WithParallel(cfg.Parallel)),
		workers:     workerx.NewSet(cfg.WorkerTimeout, deps.Workers...),
		sink:        deps.Sink,
		maxRunSteps: maxRunSteps,
		now:         time.Now,
	}

	graphRunner, err := o.compileRunGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

type Request struct {
	SessionID    string
	Query        string
	DocumentPath string
}

type runOptions struct {
	abort <-chan struct{}
}

type RunOption func(*runOptions)

// WithAbort finalizes the run with a partial answer at the first
// supervisor turn after abort is closed. A worker already running is not
// interrupted.
func WithAbort(abort <-chan struct{}) RunOption {
	return func(o *runOptions) { o.abort = abort }
}

// NewSessionID returns an identifier for a fresh session.
func NewSessionID() string {
	return uuid.NewString()
}

// Run executes one orchestration for req. Reusing a session ID resumes
// from its checkpoint; a completed session returns its stored answer.
func (o *Orchestrator) Run(ctx context.Context, req Request, opts ...RunOption) (statex.FinalAnswer, error) {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = NewSessionID()
	}

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID:    req.SessionID,
		Query:        req.Query,
		DocumentPath: req.DocumentPath,
		Abort:        ro.abort,
	})
	if err != nil {
		return statex.FinalAnswer{}, err
	}
	if out == nil || out.Shared == nil || out.Shared.FinalAnswer == nil {
		return statex.FinalAnswer{}, fmt.Errorf("%w: run ended without a final answer", contractx.ErrValidation)
	}
	return *out.Shared.FinalAnswer, nil
}
