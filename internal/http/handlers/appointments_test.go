package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthcareplus/clinic-assistant/internal/sheets"
)

func fixedClock() time.Time {
	return time.Date(2025, time.November, 5, 12, 0, 0, 0, time.Local)
}

const scheduleBody = `{
	"patient_name": "Jane Smith",
	"problem": "knee pain",
	"recommended_doctor": "Dr. Robert Miller",
	"appointment_date": "10 November 2025",
	"appointment_time": "2:00 PM"
}`

func TestScheduleNormalizesAndPersists(t *testing.T) {
	store := sheets.NewMemoryStore()
	h := NewAppointmentHandler(store, nil, fixedClock)

	rr := postJSON(t, h.Schedule, "/schedule_appointment", scheduleBody)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "scheduled successfully")

	rows, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Smith", rows[0].PatientName)
	assert.Equal(t, "Dr. Robert Miller", rows[0].Doctor)
	assert.Equal(t, "2025-11-10", rows[0].AppointmentDate)
	assert.Equal(t, "14:00", rows[0].AppointmentTime)
	assert.Equal(t, fixedClock(), rows[0].Timestamp)
}

func TestScheduleKeepsUnparseableInputRaw(t *testing.T) {
	store := sheets.NewMemoryStore()
	h := NewAppointmentHandler(store, nil, fixedClock)

	rr := postJSON(t, h.Schedule, "/schedule_appointment", `{
		"patient_name": "Jane Smith",
		"recommended_doctor": "Dr. Robert Miller",
		"appointment_date": "whenever works",
		"appointment_time": "morning-ish"
	}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rows, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "whenever works", rows[0].AppointmentDate)
	assert.Equal(t, "morning-ish", rows[0].AppointmentTime)
}

func TestScheduleSuppressesDuplicates(t *testing.T) {
	store := sheets.NewMemoryStore()
	h := NewAppointmentHandler(store, nil, fixedClock)

	rr := postJSON(t, h.Schedule, "/schedule_appointment", scheduleBody)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = postJSON(t, h.Schedule, "/schedule_appointment", scheduleBody)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "already scheduled")

	rows, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestScheduleValidation(t *testing.T) {
	h := NewAppointmentHandler(sheets.NewMemoryStore(), nil, fixedClock)

	tests := []struct {
		name string
		body string
	}{
		{"missing patient name", `{"recommended_doctor":"Dr. Miller","appointment_date":"2025-11-10","appointment_time":"14:00"}`},
		{"missing doctor", `{"patient_name":"Jane","appointment_date":"2025-11-10","appointment_time":"14:00"}`},
		{"missing date", `{"patient_name":"Jane","recommended_doctor":"Dr. Miller","appointment_time":"14:00"}`},
		{"missing time", `{"patient_name":"Jane","recommended_doctor":"Dr. Miller","appointment_date":"2025-11-10"}`},
		{"malformed body", `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, h.Schedule, "/schedule_appointment", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestScheduleStorageFailureIsHard(t *testing.T) {
	store := sheets.NewMemoryStore()
	store.AppendErr = errors.New("sheet unreachable")
	h := NewAppointmentHandler(store, nil, fixedClock)

	rr := postJSON(t, h.Schedule, "/schedule_appointment", scheduleBody)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestSaveStorageFailureIsSoft(t *testing.T) {
	store := sheets.NewMemoryStore()
	store.AppendErr = errors.New("sheet unreachable")
	h := NewAppointmentHandler(store, nil, fixedClock)

	rr := postJSON(t, h.Save, "/save_appointment", scheduleBody)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to save appointment")
}

func TestSavePersistsAndReportsDuplicates(t *testing.T) {
	store := sheets.NewMemoryStore()
	h := NewAppointmentHandler(store, nil, fixedClock)

	rr := postJSON(t, h.Save, "/save_appointment", scheduleBody)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "saved successfully")

	rr = postJSON(t, h.Save, "/save_appointment", scheduleBody)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "already saved")
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	Health(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Clinic assistant API is running")
}
