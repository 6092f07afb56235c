package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/healthcareplus/clinic-assistant/internal/schedule"
	"github.com/healthcareplus/clinic-assistant/internal/sheets"
	"github.com/healthcareplus/clinic-assistant/pkg/logging"
)

// AppointmentHandler serves the direct scheduling endpoints that bypass
// the conversational flow.
type AppointmentHandler struct {
	store  sheets.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewAppointmentHandler(store sheets.Store, logger *logging.Logger, now func() time.Time) *AppointmentHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &AppointmentHandler{store: store, logger: logger, now: now}
}

type appointmentRequest struct {
	PatientName       string `json:"patient_name"`
	Problem           string `json:"problem"`
	RecommendedDoctor string `json:"recommended_doctor"`
	AppointmentDate   string `json:"appointment_date"`
	AppointmentTime   string `json:"appointment_time"`
}

func (r appointmentRequest) validate() string {
	switch {
	case strings.TrimSpace(r.PatientName) == "":
		return "patient_name is required"
	case strings.TrimSpace(r.RecommendedDoctor) == "":
		return "recommended_doctor is required"
	case strings.TrimSpace(r.AppointmentDate) == "":
		return "appointment_date is required"
	case strings.TrimSpace(r.AppointmentTime) == "":
		return "appointment_time is required"
	default:
		return ""
	}
}

// row normalizes the submitted date and time; unparseable input is kept
// raw rather than refused, matching the conversational flow's leniency.
func (h *AppointmentHandler) row(req appointmentRequest) sheets.Row {
	date := req.AppointmentDate
	if normalized, ok := schedule.NormalizeDate(req.AppointmentDate, h.now()); ok {
		date = normalized
	}
	clock := req.AppointmentTime
	if normalized, ok := schedule.NormalizeTime(req.AppointmentTime); ok {
		clock = normalized
	}
	return sheets.Row{
		Timestamp:       h.now(),
		PatientName:     strings.TrimSpace(req.PatientName),
		Doctor:          strings.TrimSpace(req.RecommendedDoctor),
		AppointmentDate: date,
		AppointmentTime: clock,
	}
}

// Schedule handles POST /schedule_appointment. Storage failure is a hard
// error here: the caller asked for the write specifically.
func (h *AppointmentHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	duplicate, err := sheets.AppendUnique(r.Context(), h.store, h.row(req))
	if err != nil {
		h.logger.Error("failed to schedule appointment", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to schedule appointment"})
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, map[string]string{"message": "appointment already scheduled"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment scheduled successfully"})
}

// Save handles POST /save_appointment: same write as Schedule but with
// soft failure semantics.
func (h *AppointmentHandler) Save(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	duplicate, err := sheets.AppendUnique(r.Context(), h.store, h.row(req))
	if err != nil {
		h.logger.Error("failed to save appointment", "error", err.Error())
		writeJSON(w, http.StatusOK, map[string]string{"message": "failed to save appointment"})
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, map[string]string{"message": "appointment already saved"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment saved successfully"})
}

func (h *AppointmentHandler) decode(w http.ResponseWriter, r *http.Request) (appointmentRequest, bool) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return appointmentRequest{}, false
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return appointmentRequest{}, false
	}
	if req.Problem != "" {
		// The problem description is collected for context but is not
		// part of the persisted row.
		h.logger.Info("appointment problem noted", "patient", req.PatientName)
	}
	return req, true
}
