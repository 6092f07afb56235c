package schedule

import (
	"fmt"
	"time"
)

// RejectReason classifies why a proposed slot was refused.
type RejectReason string

const (
	ReasonMissingInput         RejectReason = "missing_input"
	ReasonUnparseableInput     RejectReason = "unparseable_input"
	ReasonInvalidCombination   RejectReason = "invalid_combination"
	ReasonPastDateTime         RejectReason = "past_datetime"
	ReasonOutsideWeekdayHours  RejectReason = "outside_weekday_hours"
	ReasonOutsideSaturdayHours RejectReason = "outside_saturday_hours"
	ReasonClinicClosed         RejectReason = "clinic_closed"
)

// Rejection is returned when a proposed slot fails validation. Message is
// patient-facing and safe to relay verbatim.
type Rejection struct {
	Reason  RejectReason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("schedule: slot rejected (%s): %s", r.Reason, r.Message)
}

// Confirmation is the accepted slot with both canonical forms and a
// display string like "Monday, November 10, 2025 at 2:00 PM".
type Confirmation struct {
	Date    string // canonical ISO date
	Time    string // canonical 24-hour HH:MM
	When    time.Time
	Display string
}

// Clinic operating windows. Lower bounds are inclusive, upper bounds
// exclusive: a 6:00 PM request on a weekday is refused.
const (
	weekdayOpenHour   = 9
	weekdayCloseHour  = 18
	saturdayOpenHour  = 10
	saturdayCloseHour = 16
)

// ValidateSlot normalizes the supplied date and time text and checks the
// resulting instant against clinic hours. now supplies the clock; the
// instant must be strictly in the future. On failure the returned error
// is always a *Rejection.
func ValidateSlot(dateText, timeText string, now time.Time) (Confirmation, error) {
	if dateText == "" || timeText == "" {
		return Confirmation{}, &Rejection{
			Reason:  ReasonMissingInput,
			Message: "Please provide both a date and a time for your appointment.",
		}
	}

	date, dateOK := NormalizeDate(dateText, now)
	clock, timeOK := NormalizeTime(timeText)
	if !dateOK || !timeOK {
		return Confirmation{}, &Rejection{
			Reason:  ReasonUnparseableInput,
			Message: "I couldn't understand the date or time format. Could you rephrase it?",
		}
	}

	when, err := time.ParseInLocation(CanonicalDateLayout+" "+CanonicalTimeLayout, date+" "+clock, now.Location())
	if err != nil {
		return Confirmation{}, &Rejection{
			Reason:  ReasonInvalidCombination,
			Message: "That date and time don't form a valid calendar moment. Could you double-check them?",
		}
	}

	if !when.After(now) {
		return Confirmation{}, &Rejection{
			Reason:  ReasonPastDateTime,
			Message: "Please provide a future date and time.",
		}
	}

	switch when.Weekday() {
	case time.Sunday:
		return Confirmation{}, &Rejection{
			Reason:  ReasonClinicClosed,
			Message: "Our clinic is closed on Sundays.",
		}
	case time.Saturday:
		if h := when.Hour(); h < saturdayOpenHour || h >= saturdayCloseHour {
			return Confirmation{}, &Rejection{
				Reason:  ReasonOutsideSaturdayHours,
				Message: "Our clinic is open from 10:00 AM to 4:00 PM on Saturdays.",
			}
		}
	default:
		if h := when.Hour(); h < weekdayOpenHour || h >= weekdayCloseHour {
			return Confirmation{}, &Rejection{
				Reason:  ReasonOutsideWeekdayHours,
				Message: "Our clinic is open from 9:00 AM to 6:00 PM on weekdays.",
			}
		}
	}

	return Confirmation{
		Date:    date,
		Time:    clock,
		When:    when,
		Display: when.Format("Monday, January 2, 2006 at 3:04 PM"),
	}, nil
}
