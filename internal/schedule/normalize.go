// Package schedule normalizes patient-supplied date/time text and
// validates proposed appointment slots against clinic operating hours.
package schedule

import (
	"strings"
	"time"
	"unicode"
)

// CanonicalDateLayout is the normalized calendar date form (ISO 8601).
const CanonicalDateLayout = "2006-01-02"

// CanonicalTimeLayout is the normalized 24-hour clock form.
const CanonicalTimeLayout = "15:04"

// dateLayouts are tried in order; the first successful parse wins. The
// already-canonical ISO form is accepted first, then American month-first
// forms before day-first forms, so "3/4/2025" is March 4th, not April 3rd.
// That ambiguity resolution is deliberate and matches the documented
// parsing priority; do not reorder.
var dateLayouts = []string{
	CanonicalDateLayout,
	"1/2/2006",
	"1-2-2006",
	"2/1/2006",
	"2-1-2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// timeLayouts are tried in order: 12-hour with minutes, bare 12-hour,
// then 24-hour.
var timeLayouts = []string{
	"3:04 PM",
	"3 PM",
	CanonicalTimeLayout,
}

// NormalizeDate converts heterogeneous date text to the canonical ISO
// form. The relative tokens "today" and "tomorrow" resolve against now.
// Returns ok=false when no template matches; callers must not treat the
// input as a date in that case.
func NormalizeDate(text string, now time.Time) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	switch strings.ToLower(text) {
	case "today":
		return now.Format(CanonicalDateLayout), true
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(CanonicalDateLayout), true
	}

	candidates := []string{text}
	if titled := titleWords(text); titled != text {
		// Month names need their canonical capitalization for parsing,
		// patients rarely oblige.
		candidates = append(candidates, titled)
	}

	for _, layout := range dateLayouts {
		for _, candidate := range candidates {
			if dt, err := time.Parse(layout, candidate); err == nil {
				return dt.Format(CanonicalDateLayout), true
			}
		}
	}
	return "", false
}

// NormalizeTime converts heterogeneous time text to the canonical
// 24-hour HH:MM form. Returns ok=false when no template matches.
func NormalizeTime(text string) (string, bool) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return "", false
	}

	for _, layout := range timeLayouts {
		if dt, err := time.Parse(layout, text); err == nil {
			return dt.Format(CanonicalTimeLayout), true
		}
	}
	return "", false
}

// titleWords capitalizes the first letter of each word so month names
// like "november" match their parse layout.
func titleWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range s {
		if startOfWord && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		startOfWord = !unicode.IsLetter(r)
	}
	return b.String()
}
