package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook-ai/scheduling-agent/internal/agent"
	"github.com/medbook-ai/scheduling-agent/internal/calendar"
	"github.com/medbook-ai/scheduling-agent/internal/scheduling"
	"github.com/medbook-ai/scheduling-agent/internal/session"
	"github.com/medbook-ai/scheduling-agent/pkg/logging"
)

// cannedDecider always answers with the next scripted message.
type cannedDecider struct {
	replies []string
	calls   int
	seen    [][]agent.Message
}

func (d *cannedDecider) Decide(_ context.Context, _ string, history []agent.Message, _ []agent.ToolSpec) (agent.Decision, error) {
	d.seen = append(d.seen, append([]agent.Message{}, history...))
	if d.calls >= len(d.replies) {
		return agent.Decision{}, fmt.Errorf("no reply scripted for call %d", d.calls)
	}
	reply := d.replies[d.calls]
	d.calls++
	return agent.Decision{Message: reply}, nil
}

func newService(t *testing.T, decider agent.DecisionMaker, sessions session.Store) *Service {
	t.Helper()
	store := calendar.NewMemoryStore(map[calendar.Weekday]calendar.WorkingHours{
		calendar.Monday: {Start: calendar.TimeOfDay(9 * 60), End: calendar.TimeOfDay(12 * 60)},
	}, nil)
	engine := scheduling.NewEngine(store, scheduling.DefaultTypeCatalog())
	loop := agent.NewLoop(engine, decider, logging.Default())
	return NewService(loop, sessions, logging.Default(), nil)
}

func TestHandleQueryAssignsSessionID(t *testing.T) {
	service := newService(t, &cannedDecider{replies: []string{"Hello!"}}, session.NewMemoryStore())

	reply, sid, err := service.HandleQuery(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)
	assert.NotEmpty(t, sid)
}

func TestHandleQueryKeepsSessionID(t *testing.T) {
	service := newService(t, &cannedDecider{replies: []string{"Hello!"}}, session.NewMemoryStore())

	_, sid, err := service.HandleQuery(context.Background(), "caller-7", "hi")
	require.NoError(t, err)
	assert.Equal(t, "caller-7", sid)
}

func TestHandleQueryContinuity(t *testing.T) {
	decider := &cannedDecider{replies: []string{"We open at nine.", "Yes, nine works."}}
	service := newService(t, decider, session.NewMemoryStore())
	ctx := context.Background()

	_, sid, err := service.HandleQuery(ctx, "", "When do you open?")
	require.NoError(t, err)

	_, _, err = service.HandleQuery(ctx, sid, "Can I come then?")
	require.NoError(t, err)

	// The second turn saw the first turn's user and assistant messages.
	require.Len(t, decider.seen, 2)
	assert.Len(t, decider.seen[0], 1)
	require.Len(t, decider.seen[1], 3)
	assert.Equal(t, "When do you open?", decider.seen[1][0].Content)
	assert.Equal(t, "We open at nine.", decider.seen[1][1].Content)
	assert.Equal(t, "Can I come then?", decider.seen[1][2].Content)
}

type brokenSessionStore struct {
	loadErr error
	saveErr error
	saved   map[string][]agent.Message
}

func (s *brokenSessionStore) Load(context.Context, string) ([]agent.Message, error) {
	return nil, s.loadErr
}

func (s *brokenSessionStore) Save(_ context.Context, id string, history []agent.Message) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.saved == nil {
		s.saved = map[string][]agent.Message{}
	}
	s.saved[id] = history
	return nil
}

func TestHandleQueryLoadFailure(t *testing.T) {
	sessions := &brokenSessionStore{loadErr: errors.New("redis down")}
	service := newService(t, &cannedDecider{replies: []string{"Hello!"}}, sessions)

	_, _, err := service.HandleQuery(context.Background(), "caller-7", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestHandleQuerySaveFailureIsNotFatal(t *testing.T) {
	sessions := &brokenSessionStore{saveErr: errors.New("redis down")}
	service := newService(t, &cannedDecider{replies: []string{"Hello!"}}, sessions)

	reply, _, err := service.HandleQuery(context.Background(), "caller-7", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)
}
