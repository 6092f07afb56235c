package conversation

import (
	"regexp"
	"strings"
)

// Fields is the result of an extraction pass; only matched fields are
// populated.
type Fields struct {
	Name   string
	Doctor string
	Date   string
	Time   string
}

// Empty reports whether nothing was extracted.
func (f Fields) Empty() bool {
	return f == Fields{}
}

// Confirmation-message label patterns, most specific first.
var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)patient name:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)your name:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)name:\s*([^\n]+)`),
	}
	doctorPattern = regexp.MustCompile(`(?i)(?:doctor name|doctor):\s*([^\n]+)`)
	datePattern   = regexp.MustCompile(`(?i)date:\s*([^\n]+)`)
	timePattern   = regexp.MustCompile(`(?i)time:\s*([^\n]+)`)
)

var (
	boldRE      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRE    = regexp.MustCompile(`\*(.*?)\*`)
	underlineRE = regexp.MustCompile(`_(.*?)_`)
)

// stripMarkdown removes **bold**, *italic* and _italic_ wrapping that
// LLM recap messages tend to carry.
func stripMarkdown(s string) string {
	s = boldRE.ReplaceAllString(s, "$1")
	s = italicRE.ReplaceAllString(s, "$1")
	s = underlineRE.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// ExtractConfirmation parses a formatted confirmation (recap) message.
// A message qualifies only when all four labels are present; otherwise
// nothing is extracted at all. Within a recognized message the individual
// field matches are independent.
func ExtractConfirmation(text string) (Fields, bool) {
	lower := strings.ToLower(text)
	recognized := strings.Contains(lower, "date:") &&
		strings.Contains(lower, "time:") &&
		(strings.Contains(lower, "doctor name:") || strings.Contains(lower, "doctor:")) &&
		(strings.Contains(lower, "patient name:") || strings.Contains(lower, "name:"))
	if !recognized {
		return Fields{}, false
	}

	var f Fields
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			f.Name = stripMarkdown(m[1])
			break
		}
	}
	if m := doctorPattern.FindStringSubmatch(text); m != nil {
		f.Doctor = stripMarkdown(m[1])
	}
	if m := datePattern.FindStringSubmatch(text); m != nil {
		f.Date = stripMarkdown(m[1])
	}
	if m := timePattern.FindStringSubmatch(text); m != nil {
		f.Time = stripMarkdown(m[1])
	}
	return f, true
}

// Conversational-turn patterns used by the fallback responder. Best
// effort: first match per field wins.
var (
	utteranceNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)my name is ([A-Za-z\s]+)`),
		regexp.MustCompile(`(?i)i'm ([A-Za-z\s]+)`),
		regexp.MustCompile(`(?i)call me ([A-Za-z\s]+)`),
		regexp.MustCompile(`(?i)this is ([A-Za-z\s]+)`),
	}
	utteranceDoctorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)dr\. ([A-Za-z\s]+)`),
		regexp.MustCompile(`(?i)doctor ([A-Za-z\s]+)`),
	}
	utteranceDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(\d{1,2} (?:january|february|march|april|may|june|july|august|september|october|november|december) \d{4})`),
		regexp.MustCompile(`(?i)((?:january|february|march|april|may|june|july|august|september|october|november|december) \d{1,2} \d{4})`),
		regexp.MustCompile(`(?i)\b(today|tomorrow)\b`),
	}
	utteranceTimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s?(?:am|pm))`),
		regexp.MustCompile(`(?i)(\d{1,2}\s?(?:am|pm))\b`),
		regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`),
	}
)

// ExtractFromUtterance scans a single user utterance for any of the four
// fields.
func ExtractFromUtterance(text string) Fields {
	var f Fields
	f.Name = firstMatch(utteranceNamePatterns, text)
	f.Doctor = firstMatch(utteranceDoctorPatterns, text)
	f.Date = firstMatch(utteranceDatePatterns, text)
	f.Time = firstMatch(utteranceTimePatterns, text)
	return f
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
