package calendar

import "context"

// Store is the persistence contract for the doctor's calendar. Working
// hours are loaded once and read-only; appointments are append-only.
//
// Implementations must make Append atomic with respect to concurrent
// readers. Serializing the conflict-check-then-append sequence of a
// booking is the engine's job, not the store's.
type Store interface {
	// WorkingHoursFor returns the open interval for the weekday, or
	// ok=false if the doctor is closed that day.
	WorkingHoursFor(ctx context.Context, day Weekday) (WorkingHours, bool, error)

	// AppointmentsOn returns the committed appointments for a date in
	// ascending start-time order. An unknown date yields an empty slice.
	AppointmentsOn(ctx context.Context, date string) ([]Appointment, error)

	// Append commits a new appointment. It fails only on backing
	// storage I/O errors, which callers must treat as fatal for the
	// current operation.
	Append(ctx context.Context, appt Appointment) error
}
