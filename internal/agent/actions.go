package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/medbook-ai/scheduling-agent/internal/scheduling"
)

// ErrUnknownAction indicates the decision-maker requested an action that
// is not in the catalog. This is a dispatch-level failure, never an
// engine failure.
var ErrUnknownAction = errors.New("agent: unknown action")

const (
	actionCheckAvailability = "check_availability"
	actionBookAppointment   = "book_appointment"
)

// Action is the closed set of operations the decision-maker can invoke.
// The loop pattern-matches over the variants, so adding an action means
// adding a variant, a decode case and an execute case.
type Action interface {
	actionName() string
}

// CheckAvailabilityAction asks the engine for bookable slots.
type CheckAvailabilityAction struct {
	Date            string `json:"date"`
	AppointmentType string `json:"appointment_type"`
}

func (CheckAvailabilityAction) actionName() string { return actionCheckAvailability }

// BookAppointmentAction asks the engine to commit a booking.
type BookAppointmentAction struct {
	scheduling.BookingRequest
}

func (BookAppointmentAction) actionName() string { return actionBookAppointment }

// DecodeAction resolves a tool call into a typed action.
func DecodeAction(call ToolCall) (Action, error) {
	args := call.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch call.Name {
	case actionCheckAvailability:
		var a CheckAvailabilityAction
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, fmt.Errorf("agent: decode %s arguments: %w", call.Name, err)
		}
		return a, nil
	case actionBookAppointment:
		var a BookAppointmentAction
		if err := json.Unmarshal(args, &a.BookingRequest); err != nil {
			return nil, fmt.Errorf("agent: decode %s arguments: %w", call.Name, err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, call.Name)
	}
}

// ActionCatalog returns the tool specs exposed to the decision-maker.
// The appointment-type enumeration comes from the engine's catalog so
// prompts never drift from what the engine accepts.
func ActionCatalog(types scheduling.TypeCatalog) []ToolSpec {
	typeList := strings.Join(types.Names(), ", ")
	return []ToolSpec{
		{
			Name:        actionCheckAvailability,
			Description: "Check the doctor's available appointment slots for a given date and appointment type.",
			Params: []ToolParam{
				{Name: "date", Type: "string", Description: "Calendar date in YYYY-MM-DD format.", Required: true},
				{Name: "appointment_type", Type: "string", Description: "One of: " + typeList + ".", Required: true},
			},
		},
		{
			Name:        actionBookAppointment,
			Description: "Book an appointment for a patient at a specific date and start time.",
			Params: []ToolParam{
				{Name: "appointment_type", Type: "string", Description: "One of: " + typeList + ".", Required: true},
				{Name: "date", Type: "string", Description: "Calendar date in YYYY-MM-DD format.", Required: true},
				{Name: "start_time", Type: "string", Description: "Start time in 24-hour HH:MM format.", Required: true},
				{Name: "patient", Type: "object", Description: "The patient the appointment is for.", Required: true, Properties: []ToolParam{
					{Name: "name", Type: "string", Required: true},
					{Name: "email", Type: "string", Required: true},
					{Name: "phone", Type: "string", Required: true},
				}},
				{Name: "reason", Type: "string", Description: "Free-text reason for the visit.", Required: true},
			},
		},
	}
}
