// Package calendar owns the doctor's working-hours map and the list of
// committed appointments. It is the single source of truth that the
// scheduling engine consults for conflict checks.
package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// Weekday is the 3-letter lowercase weekday code used in the schedule
// document ("mon" .. "sun").
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// WeekdayOf maps a calendar date to its schedule weekday code.
func WeekdayOf(date time.Time) Weekday {
	switch date.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

const dateLayout = "2006-01-02"

// ParseDate validates a YYYY-MM-DD calendar date. Malformed input is
// rejected here rather than with a regex so that impossible dates
// (e.g. 2026-02-30) are caught too.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// TimeOfDay is a minute-precision time of day, stored as minutes after
// midnight. It marshals as "HH:MM" in JSON.
type TimeOfDay int

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("calendar: invalid time %q: expected HH:MM", s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// Add returns the time shifted forward by the given number of minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("calendar: time must be a string: %w", err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// WorkingHours is the doctor's open interval for one weekday.
// Invariant: Start < End.
type WorkingHours struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Patient identifies the person an appointment is booked for. All fields
// are opaque strings as far as scheduling is concerned.
type Patient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Appointment is a committed booking on the doctor's calendar.
type Appointment struct {
	Date            string    `json:"date"`
	StartTime       TimeOfDay `json:"start_time"`
	AppointmentType string    `json:"appointment_type"`
	DurationMinutes int       `json:"duration"`
	Patient         Patient   `json:"patient"`
	Reason          string    `json:"reason"`
}

// End returns the exclusive end of the appointment's interval.
func (a Appointment) End() TimeOfDay {
	return a.StartTime.Add(a.DurationMinutes)
}

// Overlaps reports whether the half-open interval [start, end) overlaps
// the appointment's own interval.
func (a Appointment) Overlaps(start, end TimeOfDay) bool {
	return start < a.End() && a.StartTime < end
}
