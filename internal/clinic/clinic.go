// Package clinic holds the clinic profile (doctors, hours, contact info)
// and builds the assistant's system prompt from it.
package clinic

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// WorkingHours is the human-readable schedule shown to patients.
type WorkingHours struct {
	Weekdays  string `json:"weekdays"`
	Saturdays string `json:"saturdays"`
	Sundays   string `json:"sundays"`
}

// ContactInfo holds the clinic's public contact details.
type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Details describes the clinic the assistant books for.
type Details struct {
	ClinicName   string              `json:"clinic_name"`
	Doctors      map[string][]string `json:"doctors"`
	WorkingHours WorkingHours        `json:"working_hours"`
	ContactInfo  ContactInfo         `json:"contact_info"`
}

// Default returns the built-in HealthCare Plus profile, used when no
// details file is configured.
func Default() *Details {
	return &Details{
		ClinicName: "HealthCare Plus Clinic",
		Doctors: map[string][]string{
			"General Medicine": {"Dr. Smith", "Dr. Johnson"},
			"Cardiology":       {"Dr. Williams", "Dr. Brown"},
			"Dermatology":      {"Dr. Davis", "Dr. Miller"},
			"Orthopedics":      {"Dr. Wilson", "Dr. Moore"},
			"Pediatrics":       {"Dr. Taylor", "Dr. Anderson"},
			"Neurology":        {"Dr. Thomas", "Dr. Jackson"},
		},
		WorkingHours: WorkingHours{
			Weekdays:  "9:00 AM - 6:00 PM",
			Saturdays: "10:00 AM - 4:00 PM",
			Sundays:   "Closed",
		},
		ContactInfo: ContactInfo{
			Phone:   "+1-555-123-4567",
			Email:   "info@healthcareplus.com",
			Address: "123 Medical Plaza, Health City, HC 12345",
		},
	}
}

// Load reads clinic details from a JSON file. Missing file falls back to
// the built-in profile; malformed JSON is an error.
func Load(path string) (*Details, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("clinic: read details file: %w", err)
	}
	var d Details
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("clinic: parse details file: %w", err)
	}
	if d.ClinicName == "" || len(d.Doctors) == 0 {
		return nil, fmt.Errorf("clinic: details file %s is missing clinic_name or doctors", path)
	}
	return &d, nil
}

// Specialties returns the specialty names in stable order.
func (d *Details) Specialties() []string {
	names := make([]string, 0, len(d.Doctors))
	for s := range d.Doctors {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// departmentKeywords maps patient phrasing to a specialty name.
var departmentKeywords = map[string]string{
	"general":     "General Medicine",
	"cardiology":  "Cardiology",
	"heart":       "Cardiology",
	"dermatology": "Dermatology",
	"skin":        "Dermatology",
	"orthopedics": "Orthopedics",
	"bone":        "Orthopedics",
	"pediatrics":  "Pediatrics",
	"child":       "Pediatrics",
	"neurology":   "Neurology",
	"brain":       "Neurology",
}

// RecommendDoctor maps a free-text department mention to the first doctor
// of the matching specialty.
func (d *Details) RecommendDoctor(text string) (doctor, specialty string, ok bool) {
	lower := strings.ToLower(text)
	for keyword, name := range departmentKeywords {
		if !strings.Contains(lower, keyword) {
			continue
		}
		if doctors, exists := d.Doctors[name]; exists && len(doctors) > 0 {
			return doctors[0], name, true
		}
	}
	return "", "", false
}

// SystemPrompt renders the assistant instructions for the LLM. The recap
// format it mandates is what the confirmation extractor recognizes.
func (d *Details) SystemPrompt() string {
	var specialties strings.Builder
	for _, s := range d.Specialties() {
		fmt.Fprintf(&specialties, "- %s: %s\n", s, strings.Join(d.Doctors[s], ", "))
	}

	return fmt.Sprintf(`You are a friendly and helpful medical assistant for %s.
Your role is to greet patients, collect their name, ask which doctor or department they want to visit,
schedule an appointment, and be polite throughout the conversation.

Clinic Details:
- Name: %s
- Working Hours: Weekdays: %s, Saturdays: %s, Sundays: %s
- Contact: %s, %s
- Address: %s

Available Doctors by Specialty:
%s
Instructions:
1. Greet the patient warmly and ask for their name first (this is required).
2. Ask which doctor or medical department they want to visit.
3. Recommend an appropriate doctor if they mention a department.
4. Ask for their preferred date and time for the appointment.
5. Normalize date/time formats and always check if the requested time is within the clinic's working hours.
6. If the requested time is earlier or later than working hours, politely explain the valid hours and ask the patient to choose another time.
7. Never provide a recap until the patient explicitly confirms with a valid date and time within working hours.
8. If you don't understand something, apologize politely and ask for clarification.
9. Do NOT give a recap message until the patient explicitly confirms (e.g., "confirm", "yes", "book it", "finalize").
10. Once the patient confirms, provide ONE recap message that must include:
    - Patient Name:
    - Doctor Name:
    - Date:
    - Time:
11. After the recap, thank the patient politely and end the booking process.
12. It is the year 2025.`,
		d.ClinicName,
		d.ClinicName,
		d.WorkingHours.Weekdays, d.WorkingHours.Saturdays, d.WorkingHours.Sundays,
		d.ContactInfo.Phone, d.ContactInfo.Email,
		d.ContactInfo.Address,
		specialties.String(),
	)
}

// Greeting is the assistant's opening line, also used by the fallback
// responder.
func (d *Details) Greeting() string {
	return fmt.Sprintf("Hello! Welcome to %s. I'm here to help you schedule an appointment. May I know your name please?", d.ClinicName)
}
