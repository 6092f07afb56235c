package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/healthcareplus/clinic-assistant/internal/clinic"
	"github.com/healthcareplus/clinic-assistant/internal/schedule"
)

// FallbackResponder carries a minimal scripted conversation when the LLM
// service is unreachable. It mutates the session record directly and
// relies on the derived state to pick the next prompt.
type FallbackResponder struct {
	clinic *clinic.Details
	now    func() time.Time
}

// NewFallbackResponder creates the degraded-mode responder. now may be
// nil, defaulting to the wall clock.
func NewFallbackResponder(details *clinic.Details, now func() time.Time) *FallbackResponder {
	if details == nil {
		details = clinic.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &FallbackResponder{clinic: details, now: now}
}

var greetingWords = []string{"hi", "hello", "hey", "hola"}

var confirmWords = []string{"confirm", "yes", "sure", "finalize", "okay", "ok", "done", "book it", "yeah", "yep"}

var nameStopWords = []string{"yes", "no", "ok", "sure", "hi", "hello"}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Respond produces the scripted reply for one user turn. The session's
// record is updated in place; the caller persists the record once it is
// confirmed.
func (f *FallbackResponder) Respond(sess *Session, input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	rec := &sess.Record

	if containsAny(lower, greetingWords) && rec.PatientName == "" {
		return f.clinic.Greeting()
	}

	switch sess.State() {
	case StateGreeting, StateAskingName:
		return f.captureName(rec, input, lower)
	case StateAskingDoctor:
		return f.captureDoctor(rec, input)
	case StateAskingDateTime:
		return f.captureDateTime(rec, input)
	case StateReadyToConfirm:
		if containsAny(lower, confirmWords) {
			return f.confirm(rec)
		}
		return "Please say 'confirm' to finalize your appointment, or give me a different date and time."
	case StateDone:
		return "Your appointment is already booked. Is there anything else I can help you with?"
	default:
		return "I'm here to help you schedule an appointment. Could you please tell me your name so we can get started?"
	}
}

// captureName accepts the utterance as a name unless it looks like filler
// (too short, a yes/no word, or digits).
func (f *FallbackResponder) captureName(rec *BookingRecord, input, lower string) string {
	candidate := strings.TrimSpace(input)
	if extracted := ExtractFromUtterance(input).Name; extracted != "" {
		candidate = extracted
	}

	if len(candidate) <= 2 || containsAny(lower, nameStopWords) || isDigits(candidate) {
		return "Could you please tell me your name again?"
	}

	rec.PatientName = candidate
	return fmt.Sprintf("Nice to meet you, %s! Which doctor or medical department would you like to visit?", candidate)
}

func (f *FallbackResponder) captureDoctor(rec *BookingRecord, input string) string {
	if doctor, specialty, ok := f.clinic.RecommendDoctor(input); ok {
		rec.RecommendedDoctor = doctor
		return fmt.Sprintf("Thank you! I recommend %s from our %s department. When would you like to schedule your appointment?", doctor, strings.ToLower(specialty))
	}
	if named := ExtractFromUtterance(input).Doctor; named != "" {
		rec.RecommendedDoctor = "Dr. " + strings.TrimSpace(named)
		return fmt.Sprintf("Thank you! When would you like to schedule your appointment with %s?", rec.RecommendedDoctor)
	}
	return "Which doctor or medical department would you like to visit? We have general medicine, cardiology, dermatology, orthopedics, pediatrics, and neurology."
}

func (f *FallbackResponder) captureDateTime(rec *BookingRecord, input string) string {
	fields := ExtractFromUtterance(input)
	if fields.Date != "" {
		rec.AppointmentDateRaw = fields.Date
	}
	if fields.Time != "" {
		rec.AppointmentTimeRaw = fields.Time
	}

	switch {
	case rec.AppointmentDateRaw != "" && rec.AppointmentTimeRaw != "":
		return fmt.Sprintf("Thank you! I've scheduled your appointment for %s at %s. Please say 'confirm' to finalize your appointment.",
			rec.AppointmentDateRaw, rec.AppointmentTimeRaw)
	case rec.AppointmentDateRaw != "":
		return "Thank you! What time would you prefer for your appointment?"
	default:
		return "Thank you! When would you like to schedule your appointment?"
	}
}

// confirm runs the hours policy over the collected slot. Rejections clear
// the slot and re-prompt; acceptance finalizes the record for the caller
// to persist.
func (f *FallbackResponder) confirm(rec *BookingRecord) string {
	conf, err := schedule.ValidateSlot(rec.AppointmentDateRaw, rec.AppointmentTimeRaw, f.now())
	if err != nil {
		rec.AppointmentDateRaw = ""
		rec.AppointmentDate = ""
		rec.AppointmentTimeRaw = ""
		rec.AppointmentTime = ""

		var rej *schedule.Rejection
		if errors.As(err, &rej) {
			return rej.Message + " Could you choose another date and time?"
		}
		return "I couldn't validate that date and time. Could you choose another slot?"
	}

	rec.AppointmentDate = conf.Date
	rec.AppointmentTime = conf.Time
	rec.Confirmed = true
	return fmt.Sprintf("Thank you, %s! Your appointment with %s is confirmed for %s. We'll see you then!",
		rec.PatientName, rec.RecommendedDoctor, conf.Display)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
