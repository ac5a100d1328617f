package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/medbook-ai/scheduling-agent/internal/observability/metrics"
	"github.com/medbook-ai/scheduling-agent/internal/scheduling"
	"github.com/medbook-ai/scheduling-agent/pkg/logging"
)

// ErrMaxRoundsExceeded indicates the decision-maker kept requesting
// actions without ever producing a final answer.
var ErrMaxRoundsExceeded = errors.New("agent: decision-maker exceeded the maximum number of rounds")

const defaultMaxRounds = 8

const systemPromptTemplate = "You are a helpful clinic assistant. You help callers check the doctor's availability and book appointments. " +
	"Use the check_availability tool before proposing times, and the book_appointment tool to commit a booking once the caller has confirmed " +
	"a time and provided their name, email and phone number. The offered appointment types are: %s. " +
	"Dates are YYYY-MM-DD and times are 24-hour HH:MM. If a tool reports an error, explain it to the caller and suggest an alternative."

// Loop is the two-state dispatch loop: ask the decision-maker what to do
// next, execute any requested actions against the engine, feed the
// observations back, and stop when a plain final message comes back.
type Loop struct {
	engine  *scheduling.Engine
	decider DecisionMaker
	logger  *logging.Logger
	metrics *metrics.AgentMetrics

	tools     []ToolSpec
	system    string
	maxRounds int
}

// LoopOption configures the dispatch loop.
type LoopOption func(*Loop)

// WithMaxRounds overrides the decide/act round bound.
func WithMaxRounds(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.maxRounds = n
		}
	}
}

// WithMetrics attaches agent metrics.
func WithMetrics(m *metrics.AgentMetrics) LoopOption {
	return func(l *Loop) {
		l.metrics = m
	}
}

// NewLoop wires a dispatch loop around the engine and decision-maker.
func NewLoop(engine *scheduling.Engine, decider DecisionMaker, logger *logging.Logger, opts ...LoopOption) *Loop {
	if engine == nil {
		panic("agent: engine cannot be nil")
	}
	if decider == nil {
		panic("agent: decision-maker cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	l := &Loop{
		engine:    engine,
		decider:   decider,
		logger:    logger,
		tools:     ActionCatalog(engine.Catalog()),
		maxRounds: defaultMaxRounds,
	}
	l.system = fmt.Sprintf(systemPromptTemplate, joinNames(engine.Catalog()))
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes one caller query to completion. The caller owns
// cross-invocation continuity: history is whatever it saved from the
// previous Run for this session, and the returned history includes this
// turn. sessionID is threaded through for logging only.
func (l *Loop) Run(ctx context.Context, sessionID string, history []Message, userQuery string) (string, []Message, error) {
	msgs := append(append([]Message{}, history...), Message{Role: RoleUser, Content: userQuery})

	for round := 1; round <= l.maxRounds; round++ {
		decision, err := l.decider.Decide(ctx, l.system, msgs, l.tools)
		if err != nil {
			return "", history, fmt.Errorf("agent: decision-maker failed: %w", err)
		}

		if len(decision.ToolCalls) == 0 {
			l.observeRounds(round)
			msgs = append(msgs, Message{Role: RoleAssistant, Content: decision.Message})
			return decision.Message, msgs, nil
		}

		msgs = append(msgs, Message{
			Role:      RoleAssistant,
			Content:   decision.Message,
			ToolCalls: decision.ToolCalls,
		})

		results := make([]ToolResult, 0, len(decision.ToolCalls))
		for _, call := range decision.ToolCalls {
			observation, failed, err := l.execute(ctx, call)
			if err != nil {
				// Backing-store faults propagate; the calendar's
				// integrity cannot be assumed after one.
				return "", history, err
			}
			l.logger.Info("executed catalog action",
				"session_id", sessionID,
				"action", call.Name,
				"failed", failed,
				"round", round,
			)
			results = append(results, ToolResult{
				CallID:  call.ID,
				Name:    call.Name,
				Content: observation,
				IsError: failed,
			})
		}
		msgs = append(msgs, Message{Role: RoleTool, ToolResults: results})
	}

	l.observeRounds(l.maxRounds)
	return "", history, ErrMaxRoundsExceeded
}

// execute runs one tool call and serializes the outcome as an
// observation. Validation failures and unknown actions become error
// observations so the decision-maker can react; only store I/O faults
// are returned as hard errors.
func (l *Loop) execute(ctx context.Context, call ToolCall) (observation string, failed bool, err error) {
	action, err := DecodeAction(call)
	if err != nil {
		if errors.Is(err, ErrUnknownAction) || isDecodeError(err) {
			l.metrics.ObserveAction(call.Name, "rejected")
			return errorObservation(err), true, nil
		}
		return "", false, err
	}

	switch a := action.(type) {
	case CheckAvailabilityAction:
		slots, err := l.engine.ComputeAvailability(ctx, a.Date, a.AppointmentType)
		if err != nil {
			return l.observeFailure(call.Name, err)
		}
		l.metrics.ObserveAction(call.Name, "ok")
		return mustJSON(map[string]any{
			"date":            a.Date,
			"available_slots": slots,
		}), false, nil

	case BookAppointmentAction:
		confirmation, err := l.engine.Book(ctx, a.BookingRequest)
		if err != nil {
			if scheduling.IsValidationError(err) {
				l.metrics.ObserveBooking("rejected")
			}
			return l.observeFailure(call.Name, err)
		}
		l.metrics.ObserveAction(call.Name, "ok")
		l.metrics.ObserveBooking("confirmed")
		return mustJSON(confirmation), false, nil

	default:
		return "", false, fmt.Errorf("%w: %q", ErrUnknownAction, call.Name)
	}
}

func (l *Loop) observeFailure(name string, err error) (string, bool, error) {
	if scheduling.IsValidationError(err) {
		l.metrics.ObserveAction(name, "invalid")
		return errorObservation(err), true, nil
	}
	l.metrics.ObserveAction(name, "store_error")
	return "", false, err
}

func (l *Loop) observeRounds(rounds int) {
	l.metrics.ObserveDecideRounds(rounds)
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func errorObservation(err error) string {
	return mustJSON(map[string]string{"error": err.Error()})
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(data)
}

func joinNames(c scheduling.TypeCatalog) string {
	return strings.Join(c.Names(), ", ")
}
