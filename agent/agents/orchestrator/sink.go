package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	qstashx "github.com/tanpawarit/travel-orchestrator/pkg/qstash"
)

// Publisher is the subset of the QStash client used to deliver answers.
type Publisher interface {
	Publish(ctx context.Context, destination string, body any, forward map[string]string) (*qstashx.PublishResponse, error)
}

var _ contractx.AnswerSink = (*QStashSink)(nil)

// QStashSink publishes final answers to a QStash destination.
type QStashSink struct {
	publisher   Publisher
	destination string
}

func NewQStashSink(publisher Publisher, destination string) *QStashSink {
	return &QStashSink{publisher: publisher, destination: destination}
}

type answerEnvelope struct {
	SessionID string             `json:"session_id"`
	Answer    statex.FinalAnswer `json:"answer"`
}

func (s *QStashSink) Deliver(ctx context.Context, sessionID string, answer statex.FinalAnswer) error {
	resp, err := s.publisher.Publish(ctx, s.destination, answerEnvelope{SessionID: sessionID, Answer: answer}, map[string]string{
		"Session-Id": sessionID,
	})
	if err != nil {
		return fmt.Errorf("publish answer: %w", err)
	}
	log.Info().Str("session_id", sessionID).Str("message_id", resp.MessageID).Msg("answer published")
	return nil
}
