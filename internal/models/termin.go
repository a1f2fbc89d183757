package models

import (
	"fmt"
	"time"
)

// Wire layouts used by the portal API. Dates are calendar days, times are
// wall-clock without a zone; the client applies its configured timezone.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Termin is a club event as served by the portal API.
// The JSON field names are the server's German ones.
type Termin struct {
	ID           int    `json:"id"`
	Title        string `json:"titel"`
	Description  string `json:"beschreibung,omitempty"`
	Date         string `json:"datum"`            // DateLayout
	Begin        string `json:"beginn,omitempty"` // TimeLayout, empty means all-day
	End          string `json:"ende,omitempty"`   // TimeLayout
	Capacity     int    `json:"anzahl,omitempty"`
	Deadline     string `json:"stichtag,omitempty"` // DateLayout, signup deadline
	ContactName  string `json:"ansprechpartner_name,omitempty"`
	ContactMail  string `json:"ansprechpartner_mail,omitempty"`
	Score        int    `json:"score,omitempty"`
	ReminderSent bool   `json:"erinnerung_gesendet,omitempty"`
}

// AllDay reports whether the termin has no start time.
func (t Termin) AllDay() bool {
	return t.Begin == ""
}

// StartAt returns the start instant of the termin in the given location:
// the event date at its start time, or at midnight if no start time is set.
func (t Termin) StartAt(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, t.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("termin %d has invalid date %q: %w", t.ID, t.Date, err)
	}
	if t.Begin == "" {
		return day, nil
	}
	return atTime(day, t.Begin, loc)
}

// EndAt returns the end instant of the termin in the given location.
// It falls back to the start time when no end time is set, and to the end of
// the day when the termin has neither.
func (t Termin) EndAt(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, t.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("termin %d has invalid date %q: %w", t.ID, t.Date, err)
	}
	switch {
	case t.End != "":
		return atTime(day, t.End, loc)
	case t.Begin != "":
		return atTime(day, t.Begin, loc)
	default:
		return day.Add(24*time.Hour - time.Second), nil
	}
}

// atTime combines a midnight day instant with an HH:MM wall-clock time.
func atTime(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
