// Package scheduling implements the availability and booking engine: it
// turns working hours plus committed appointments into bookable slots,
// and validates and commits new bookings without conflicts.
package scheduling

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/medbook-ai/scheduling-agent/internal/calendar"
)

// slotGranularityMinutes is the step between candidate slot start times.
const slotGranularityMinutes = 15

// Slot is a candidate appointment interval offered as bookable.
// Unavailable candidates are simply omitted, so Available is always true
// on emitted slots.
type Slot struct {
	StartTime calendar.TimeOfDay `json:"start_time"`
	EndTime   calendar.TimeOfDay `json:"end_time"`
	Available bool               `json:"available"`
}

// BookingRequest carries everything needed to commit an appointment.
type BookingRequest struct {
	AppointmentType string           `json:"appointment_type"`
	Date            string           `json:"date"`
	StartTime       string           `json:"start_time"`
	Patient         calendar.Patient `json:"patient"`
	Reason          string           `json:"reason"`
}

// BookingDetails echoes the booked appointment back to the caller.
type BookingDetails struct {
	PatientName     string `json:"patient_name"`
	AppointmentType string `json:"appointment_type"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
}

// BookingConfirmation is returned on a successful commit.
type BookingConfirmation struct {
	BookingID        string         `json:"booking_id"`
	Status           string         `json:"status"`
	ConfirmationCode string         `json:"confirmation_code"`
	Details          BookingDetails `json:"details"`
}

// Engine computes availability and commits bookings against a calendar
// store. It holds no calendar state of its own; the store is consulted
// on every call.
type Engine struct {
	store   calendar.Store
	catalog TypeCatalog

	// bookMu serializes the conflict-check-then-append sequence of
	// Book so two concurrent bookings cannot both read "no conflict"
	// before either appends.
	bookMu sync.Mutex
}

// NewEngine creates an engine over the given store. A nil catalog gets
// the default clinic offering.
func NewEngine(store calendar.Store, catalog TypeCatalog) *Engine {
	if store == nil {
		panic("scheduling: calendar store cannot be nil")
	}
	if catalog == nil {
		catalog = DefaultTypeCatalog()
	}
	return &Engine{store: store, catalog: catalog}
}

// Catalog returns the appointment-type catalog the engine validates
// against.
func (e *Engine) Catalog() TypeCatalog {
	return e.catalog
}

// ComputeAvailability returns the bookable slots for a date and
// appointment type in ascending start-time order. A day without working
// hours yields an empty slice, not an error.
func (e *Engine) ComputeAvailability(ctx context.Context, date, appointmentType string) ([]Slot, error) {
	required, ok := e.catalog.Duration(appointmentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAppointmentType, appointmentType)
	}

	day, err := calendar.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	hours, open, err := e.store.WorkingHoursFor(ctx, calendar.WeekdayOf(day))
	if err != nil {
		return nil, err
	}
	if !open {
		return []Slot{}, nil
	}

	booked, err := e.store.AppointmentsOn(ctx, date)
	if err != nil {
		return nil, err
	}

	slots := []Slot{}
	for current := hours.Start; current.Add(required) <= hours.End; current = current.Add(slotGranularityMinutes) {
		end := current.Add(required)
		if overlapsAny(booked, current, end) {
			continue
		}
		slots = append(slots, Slot{StartTime: current, EndTime: end, Available: true})
	}
	return slots, nil
}

// Book validates the request against working hours and existing
// appointments, then commits it. The conflict check re-reads the store
// under the booking lock; a stale availability snapshot is never
// trusted.
func (e *Engine) Book(ctx context.Context, req BookingRequest) (*BookingConfirmation, error) {
	required, ok := e.catalog.Duration(req.AppointmentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAppointmentType, req.AppointmentType)
	}

	day, err := calendar.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}

	start, err := calendar.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStartTime, req.StartTime)
	}
	end := start.Add(required)

	hours, open, err := e.store.WorkingHoursFor(ctx, calendar.WeekdayOf(day))
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, fmt.Errorf("%w: %s", ErrDoctorUnavailable, req.Date)
	}
	if start < hours.Start || end > hours.End {
		return nil, fmt.Errorf("%w: %s-%s is outside %s-%s", ErrOutsideWorkingHours, start, end, hours.Start, hours.End)
	}

	e.bookMu.Lock()
	defer e.bookMu.Unlock()

	booked, err := e.store.AppointmentsOn(ctx, req.Date)
	if err != nil {
		return nil, err
	}
	if overlapsAny(booked, start, end) {
		return nil, fmt.Errorf("%w: %s-%s on %s", ErrSlotConflict, start, end, req.Date)
	}

	appt := calendar.Appointment{
		Date:            req.Date,
		StartTime:       start,
		AppointmentType: req.AppointmentType,
		DurationMinutes: required,
		Patient:         req.Patient,
		Reason:          req.Reason,
	}
	if err := e.store.Append(ctx, appt); err != nil {
		return nil, err
	}

	return &BookingConfirmation{
		BookingID:        newBookingID(),
		Status:           "confirmed",
		ConfirmationCode: newConfirmationCode(),
		Details: BookingDetails{
			PatientName:     req.Patient.Name,
			AppointmentType: req.AppointmentType,
			Date:            req.Date,
			StartTime:       start.String(),
		},
	}, nil
}

func overlapsAny(booked []calendar.Appointment, start, end calendar.TimeOfDay) bool {
	for _, appt := range booked {
		if appt.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func newBookingID() string {
	return "APPT-" + uuid.NewString()[:8]
}

func newConfirmationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:6])
}
