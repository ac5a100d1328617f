// Package chat fronts the dispatch loop with a session-aware service
// and its HTTP handler.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medbook-ai/scheduling-agent/internal/agent"
	"github.com/medbook-ai/scheduling-agent/internal/observability/metrics"
	"github.com/medbook-ai/scheduling-agent/internal/session"
	"github.com/medbook-ai/scheduling-agent/pkg/logging"
)

// Service runs one caller query through the dispatch loop, restoring
// and saving the session history around it.
type Service struct {
	loop     *agent.Loop
	sessions session.Store
	logger   *logging.Logger
	metrics  *metrics.AgentMetrics
}

// NewService wires the chat service.
func NewService(loop *agent.Loop, sessions session.Store, logger *logging.Logger, m *metrics.AgentMetrics) *Service {
	if loop == nil {
		panic("chat: dispatch loop cannot be nil")
	}
	if sessions == nil {
		panic("chat: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		loop:     loop,
		sessions: sessions,
		logger:   logger,
		metrics:  m,
	}
}

// HandleQuery answers one caller message. An empty session id starts a
// fresh session; the assigned id is returned so the caller can continue
// the conversation.
func (s *Service) HandleQuery(ctx context.Context, sessionID, userQuery string) (reply, sid string, err error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	started := time.Now()
	defer func() {
		s.metrics.ObserveChatLatency(time.Since(started).Seconds())
	}()

	history, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", sessionID, fmt.Errorf("chat: load session: %w", err)
	}

	reply, updated, err := s.loop.Run(ctx, sessionID, history, userQuery)
	if err != nil {
		return "", sessionID, err
	}

	if err := s.sessions.Save(ctx, sessionID, updated); err != nil {
		// The caller already has their answer; losing continuity is
		// worth a log line, not a failed request.
		s.logger.Error("failed to save session history", "error", err, "session_id", sessionID)
	}

	s.logger.Info("chat turn completed",
		"session_id", sessionID,
		"history_len", len(updated),
	)
	return reply, sessionID, nil
}
