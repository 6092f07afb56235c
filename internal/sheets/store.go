// Package sheets persists confirmed appointments to a spreadsheet-backed
// store, one row per appointment.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// TimestampLayout is the first-column format of every persisted row.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the enforced first row of the sheet.
var Header = []string{"Timestamp", "Patient Name", "Recommended Doctor", "Appointment Date", "Appointment Time"}

// Row is one persisted appointment.
type Row struct {
	Timestamp       time.Time
	PatientName     string
	Doctor          string
	AppointmentDate string
	AppointmentTime string
}

// dedupeSeparator joins the four non-timestamp fields for duplicate
// comparison.
const dedupeSeparator = " | "

// Key returns the duplicate-comparison join of the four non-timestamp
// fields.
func (r Row) Key() string {
	return strings.Join([]string{r.PatientName, r.Doctor, r.AppointmentDate, r.AppointmentTime}, dedupeSeparator)
}

// Values renders the row in sheet column order.
func (r Row) Values() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.PatientName,
		r.Doctor,
		r.AppointmentDate,
		r.AppointmentTime,
	}
}

// Store is the appointment persistence collaborator.
type Store interface {
	Append(ctx context.Context, row Row) error
	List(ctx context.Context) ([]Row, error)
}

// AppendUnique appends the row unless an existing row matches on all four
// non-timestamp fields. A suppressed duplicate is reported as success.
func AppendUnique(ctx context.Context, store Store, row Row) (duplicate bool, err error) {
	existing, err := store.List(ctx)
	if err != nil {
		return false, fmt.Errorf("sheets: list existing appointments: %w", err)
	}

	key := row.Key()
	for _, r := range existing {
		if r.Key() == key {
			return true, nil
		}
	}

	if err := store.Append(ctx, row); err != nil {
		return false, fmt.Errorf("sheets: append appointment: %w", err)
	}
	return false, nil
}

// MemoryStore is an in-memory Store used in tests and for credential-less
// local runs.
type MemoryStore struct {
	mu   sync.Mutex
	rows []Row

	// AppendErr, when set, is returned by Append. Test hook.
	AppendErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(_ context.Context, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Row, len(m.rows))
	copy(out, m.rows)
	return out, nil
}
