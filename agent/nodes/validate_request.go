package orchestratornode

import (
	"errors"
	"strings"
	"time"

	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	supervisorx "github.com/tanpawarit/travel-orchestrator/agent/supervisor"
)

var (
	ErrInvalidQuery   = errors.New("query is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID    string
	Query        string
	DocumentPath string

	// Abort, when closed, finalizes the run at the next supervisor turn.
	Abort <-chan struct{}
}

type GraphState struct {
	SessionID    string
	Query        string
	DocumentPath string
	Now          time.Time
	Abort        <-chan struct{}

	Shared   *statex.SharedState
	Resumed  bool
	Decision supervisorx.Decision
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	return &GraphState{
		SessionID:    sessionID,
		Query:        query,
		DocumentPath: strings.TrimSpace(in.DocumentPath),
		Now:          nowFn().UTC(),
		Abort:        in.Abort,
	}, nil
}

func (g *GraphState) aborted() bool {
	if g.Abort == nil {
		return false
	}
	select {
	case <-g.Abort:
		return true
	default:
		return false
	}
}
