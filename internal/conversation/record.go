// Package conversation implements the appointment-booking dialogue:
// per-session records, structured extraction from assistant replies,
// the LLM-backed engine, and the rule-based fallback responder.
package conversation

// BookingRecord is the single mutable record threaded through one
// conversation session. Raw fields hold text as extracted; the canonical
// fields are only set after successful normalization and validation.
type BookingRecord struct {
	PatientName       string `json:"patient_name,omitempty"`
	RecommendedDoctor string `json:"recommended_doctor,omitempty"`

	AppointmentDateRaw string `json:"appointment_date_raw,omitempty"`
	AppointmentDate    string `json:"appointment_date,omitempty"` // ISO, post-validation
	AppointmentTimeRaw string `json:"appointment_time_raw,omitempty"`
	AppointmentTime    string `json:"appointment_time,omitempty"` // 24-hour HH:MM, post-validation

	// Confirmed is set only after explicit user confirmation with all four
	// raw fields present and the slot accepted by the hours policy.
	Confirmed bool `json:"confirmed"`
	// Persisted is set once the record reached the appointment store and
	// blocks duplicate submission for the record's lifetime.
	Persisted bool `json:"persisted"`
}

// FieldsComplete reports whether all four raw fields are populated.
func (r *BookingRecord) FieldsComplete() bool {
	return r.PatientName != "" &&
		r.RecommendedDoctor != "" &&
		r.AppointmentDateRaw != "" &&
		r.AppointmentTimeRaw != ""
}

// Merge folds extracted fields into the record. The patient name is
// write-once: a later extraction never overwrites a non-empty name.
func (r *BookingRecord) Merge(f Fields) {
	if r.PatientName == "" && f.Name != "" {
		r.PatientName = f.Name
	}
	if f.Doctor != "" {
		r.RecommendedDoctor = f.Doctor
	}
	if f.Date != "" {
		r.AppointmentDateRaw = f.Date
		r.AppointmentDate = ""
	}
	if f.Time != "" {
		r.AppointmentTimeRaw = f.Time
		r.AppointmentTime = ""
	}
}

// State labels where the conversation stands. It is always derived from
// the record, never stored as independent truth.
type State string

const (
	StateGreeting       State = "greeting"
	StateAskingName     State = "asking_name"
	StateAskingDoctor   State = "asking_doctor"
	StateAskingDateTime State = "asking_datetime"
	StateReadyToConfirm State = "ready_to_confirm"
	StateDone           State = "done"
)

// DeriveState recomputes the conversation state from scratch. started is
// true once any user text has been processed; it only distinguishes
// Greeting from AskingName. Recompute after every record mutation.
func DeriveState(r BookingRecord, started bool) State {
	switch {
	case r.Persisted && r.Confirmed:
		return StateDone
	case r.PatientName == "":
		if !started {
			return StateGreeting
		}
		return StateAskingName
	case r.RecommendedDoctor == "":
		return StateAskingDoctor
	case r.AppointmentDateRaw == "" || r.AppointmentTimeRaw == "":
		return StateAskingDateTime
	default:
		return StateReadyToConfirm
	}
}
