// Package session persists conversation history between chat
// invocations. The dispatch loop itself is stateless; the session store
// is what gives a caller continuity across turns.
package session

import (
	"context"

	"github.com/medbook-ai/scheduling-agent/internal/agent"
)

// Store loads and saves per-session conversation history. Load returns
// an empty history for a session it has never seen.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]agent.Message, error)
	Save(ctx context.Context, sessionID string, history []agent.Message) error
}
