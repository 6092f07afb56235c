package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC) // a Monday

func TestNormalizeDateRelativeTokens(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"today", "2025-11-03"},
		{"Today", "2025-11-03"},
		{"TODAY", "2025-11-03"},
		{"tomorrow", "2025-11-04"},
		{"Tomorrow", "2025-11-04"},
		{"  tomorrow  ", "2025-11-04"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input, clock)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDateTemplates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"iso passthrough", "2025-11-10", "2025-11-10"},
		{"m/d/y", "11/10/2025", "2025-11-10"},
		{"m-d-y", "11-10-2025", "2025-11-10"},
		{"d/m/y", "25/12/2025", "2025-12-25"},
		{"d-m-y", "25-12-2025", "2025-12-25"},
		{"month d y", "November 10 2025", "2025-11-10"},
		{"mon d y", "Nov 10 2025", "2025-11-10"},
		{"d month y", "10 November 2025", "2025-11-10"},
		{"d mon y", "10 Nov 2025", "2025-11-10"},
		{"lowercase month", "10 november 2025", "2025-11-10"},
		{"zero padded", "03/04/2025", "2025-03-04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input, clock)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDateAmericanPriority(t *testing.T) {
	// 3/4/2025 is ambiguous; month-first wins by template order.
	got, ok := NormalizeDate("3/4/2025", clock)
	require.True(t, ok)
	assert.Equal(t, "2025-03-04", got)
}

func TestNormalizeDateNotParsed(t *testing.T) {
	for _, input := range []string{"", "someday", "next tuesday", "13/13/2025", "2/30/2025"} {
		_, ok := NormalizeDate(input, clock)
		assert.False(t, ok, "input %q should not parse", input)
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2:00 PM", "14:00"},
		{"2:00 pm", "14:00"},
		{"11:30 AM", "11:30"},
		{"12:00 AM", "00:00"},
		{"12:00 PM", "12:00"},
		{"2 PM", "14:00"},
		{"9 am", "09:00"},
		{"14:30", "14:30"},
		{"09:00", "09:00"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeTime(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTimeNotParsed(t *testing.T) {
	for _, input := range []string{"", "noonish", "25:00", "2 o'clock"} {
		_, ok := NormalizeTime(input)
		assert.False(t, ok, "input %q should not parse", input)
	}
}
