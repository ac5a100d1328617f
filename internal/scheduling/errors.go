package scheduling

import "errors"

// Validation failures returned by the engine. These are safe to surface
// to the caller (or to an agent deciding whether to retry with different
// arguments); anything else coming out of the engine is a backing-store
// fault and must be treated as fatal for the current operation.
var (
	ErrInvalidAppointmentType = errors.New("scheduling: invalid appointment type")
	ErrDoctorUnavailable      = errors.New("scheduling: doctor is not available on this day")
	ErrOutsideWorkingHours    = errors.New("scheduling: requested slot is outside of working hours")
	ErrSlotConflict           = errors.New("scheduling: requested slot overlaps with an existing appointment")
	ErrInvalidDate            = errors.New("scheduling: invalid date")
	ErrInvalidStartTime       = errors.New("scheduling: invalid start time")
)

// IsValidationError reports whether err is one of the engine's
// structured validation failures, as opposed to a store I/O fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAppointmentType) ||
		errors.Is(err, ErrDoctorUnavailable) ||
		errors.Is(err, ErrOutsideWorkingHours) ||
		errors.Is(err, ErrSlotConflict) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidStartTime)
}
