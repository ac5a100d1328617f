package calendar

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps the calendar entirely in memory. It is the default
// backend for tests and local development.
type MemoryStore struct {
	mu           sync.RWMutex
	workingHours map[Weekday]WorkingHours
	appointments []Appointment
}

// NewMemoryStore creates a store with the given working hours and seed
// appointments. Both inputs are copied.
func NewMemoryStore(hours map[Weekday]WorkingHours, seed []Appointment) *MemoryStore {
	wh := make(map[Weekday]WorkingHours, len(hours))
	for day, h := range hours {
		wh[day] = h
	}
	appts := make([]Appointment, len(seed))
	copy(appts, seed)
	return &MemoryStore{
		workingHours: wh,
		appointments: appts,
	}
}

// NewMemoryStoreFromFile seeds a memory store from a schedule document
// on disk. Bookings are not written back; this is the ephemeral
// development backend.
func NewMemoryStoreFromFile(path string) (*MemoryStore, error) {
	fs, err := NewFileStore(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(fs.doc.WorkingHours, fs.doc.ExistingAppointments), nil
}

// WorkingHoursFor implements Store.
func (s *MemoryStore) WorkingHoursFor(_ context.Context, day Weekday) (WorkingHours, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.workingHours[day]
	return h, ok, nil
}

// AppointmentsOn implements Store.
func (s *MemoryStore) AppointmentsOn(_ context.Context, date string) ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Appointment
	for _, appt := range s.appointments {
		if appt.Date == date {
			out = append(out, appt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, appt Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = append(s.appointments, appt)
	return nil
}
