package data

import (
	"fmt"
	"strings"
	"time"
)

// LocalMinuteLayout ist das kanonische Format für alle persistierten
// Zeitstempel: lokale Wanduhrzeit ohne Zone, minutengenau.
const LocalMinuteLayout = "2006-01-02 15:04"

var localLayouts = []string{
	LocalMinuteLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// NormalizeLocalMinute bringt Eingaben wie "2025-01-02T15:04:05" in die
// kanonische Minutenform ("2025-01-02 15:04").
func NormalizeLocalMinute(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "T", " ")
	if len(s) > len(LocalMinuteLayout) {
		s = s[:len(LocalMinuteLayout)]
	}
	return s
}

// ParseLocalMinute interpretiert einen Zeitstempel in der lokalen Zeitzone.
// Zonenbehaftete RFC3339-Werte werden in lokale Zeit umgerechnet.
func ParseLocalMinute(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local(), nil
	}
	return time.Time{}, fmt.Errorf("unlesbarer Zeitstempel: %q", s)
}

func FormatLocalMinute(t time.Time) string {
	return t.Format(LocalMinuteLayout)
}
