package intents

import (
	"fmt"
	"strings"
	"time"
)

// Locale tables for the languages the answer bank is curated in. Unknown
// languages fall back to English.

var weekdays = map[string][7]string{
	"en": {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	"de": {"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
}

var months = map[string][12]string{
	"en": {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	"de": {
		"Januar", "Februar", "März", "April", "Mai", "Juni",
		"Juli", "August", "September", "Oktober", "November", "Dezember",
	},
}

func weekdayName(language string, weekday time.Weekday) string {
	names, ok := weekdays[language]
	if !ok {
		names = weekdays["en"]
	}
	return names[weekday]
}

func monthName(language string, month time.Month) string {
	names, ok := months[language]
	if !ok {
		names = months["en"]
	}
	return names[month-1]
}

func timeLayout(language string) string {
	if language == "de" {
		return "15:04"
	}
	return "3:04 PM"
}

// formatNumber renders a value with one decimal place using the locale's
// decimal separator.
func formatNumber(language string, value float64) string {
	s := fmt.Sprintf("%.1f", value)
	if language == "de" {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}
