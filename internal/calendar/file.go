package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// scheduleDocument is the on-disk layout of the doctor's schedule:
// a working_hours map keyed by weekday code plus the flat list of
// committed appointments. Loading, appending and reloading must
// round-trip without semantic drift.
type scheduleDocument struct {
	WorkingHours         map[Weekday]WorkingHours `json:"working_hours"`
	ExistingAppointments []Appointment            `json:"existing_appointments"`
}

// FileStore persists the calendar as a single JSON document. The
// document is read once at construction; every Append rewrites it
// atomically via a temp-file rename.
type FileStore struct {
	path string

	mu  sync.RWMutex
	doc scheduleDocument
}

// NewFileStore loads the schedule document at path.
func NewFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calendar: read schedule file: %w", err)
	}

	var doc scheduleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("calendar: parse schedule file: %w", err)
	}
	for day, h := range doc.WorkingHours {
		if h.Start >= h.End {
			return nil, fmt.Errorf("calendar: working hours for %s: start %s is not before end %s", day, h.Start, h.End)
		}
	}
	if doc.WorkingHours == nil {
		doc.WorkingHours = map[Weekday]WorkingHours{}
	}

	return &FileStore{path: path, doc: doc}, nil
}

// WorkingHoursFor implements Store.
func (s *FileStore) WorkingHoursFor(_ context.Context, day Weekday) (WorkingHours, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.doc.WorkingHours[day]
	return h, ok, nil
}

// AppointmentsOn implements Store.
func (s *FileStore) AppointmentsOn(_ context.Context, date string) ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Appointment
	for _, appt := range s.doc.ExistingAppointments {
		if appt.Date == date {
			out = append(out, appt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// Append implements Store. The in-memory document and the file are
// updated together under the write lock so readers never observe a
// half-written state.
func (s *FileStore) Append(_ context.Context, appt Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.ExistingAppointments = append(s.doc.ExistingAppointments, appt)
	if err := s.flushLocked(); err != nil {
		// Roll the in-memory list back so a failed write does not
		// leave a phantom appointment behind.
		s.doc.ExistingAppointments = s.doc.ExistingAppointments[:len(s.doc.ExistingAppointments)-1]
		return err
	}
	return nil
}

func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("calendar: encode schedule file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".schedule-*.json")
	if err != nil {
		return fmt.Errorf("calendar: write schedule file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("calendar: write schedule file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("calendar: write schedule file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("calendar: replace schedule file: %w", err)
	}
	return nil
}
