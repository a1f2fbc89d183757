// Package dashboard derives the member dashboard views from the cached
// termin list. Everything here is pure: data plus an explicit "now" in, a
// value out.
package dashboard

import (
	"sort"
	"time"

	"vereinsportal/internal/models"
)

// PastGrace is how long after its start a termin remains actionable. The
// window keeps same-day and just-ended events open for late signups and
// cancellations.
const PastGrace = 24 * time.Hour

// IsPast reports whether the termin's start instant lies strictly before
// now minus the grace window. A termin with an unparseable date is treated
// as past so it drops out of the actionable views.
func IsPast(t models.Termin, now time.Time, loc *time.Location) bool {
	start, err := t.StartAt(loc)
	if err != nil {
		return true
	}
	return start.Before(now.Add(-PastGrace))
}

// Next returns the termin with the earliest start that is not before now.
// Ties keep the server's order. ok is false when nothing qualifies.
func Next(termine []models.Termin, now time.Time, loc *time.Location) (models.Termin, bool) {
	var (
		best      models.Termin
		bestStart time.Time
		found     bool
	)
	for _, t := range termine {
		start, err := t.StartAt(loc)
		if err != nil || start.Before(now) {
			continue
		}
		if !found || start.Before(bestStart) {
			best, bestStart, found = t, start, true
		}
	}
	return best, found
}

// Upcoming returns all not-past termine except the next one, ascending by
// start instant with the server's order as tie-break.
func Upcoming(termine []models.Termin, now time.Time, loc *time.Location) []models.Termin {
	next, hasNext := Next(termine, now, loc)

	var out []models.Termin
	for _, t := range termine {
		if IsPast(t, now, loc) {
			continue
		}
		if hasNext && t.ID == next.ID {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, erri := out[i].StartAt(loc)
		sj, errj := out[j].StartAt(loc)
		if erri != nil || errj != nil {
			return false
		}
		return si.Before(sj)
	})
	return out
}

// Entry is a termin rendered as a calendar entry.
type Entry struct {
	TerminID    int
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// Entries converts termine into calendar entries: start is the event date at
// its start time (midnight if absent), end falls back to the start time and
// then to the end of the day, and a termin without a start time becomes an
// all-day entry. Termine with unparseable dates are skipped.
func Entries(termine []models.Termin, loc *time.Location) []Entry {
	var entries []Entry
	for _, t := range termine {
		start, err := t.StartAt(loc)
		if err != nil {
			continue
		}
		end, err := t.EndAt(loc)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			TerminID:    t.ID,
			Title:       t.Title,
			Description: t.Description,
			Start:       start,
			End:         end,
			AllDay:      t.AllDay(),
		})
	}
	return entries
}

// Ranking returns all non-admin accounts ordered ascending by score. Lower
// scores rank first; that ordering is the product's, not an accident.
func Ranking(accounts []models.UserAccount) []models.UserAccount {
	var ranked []models.UserAccount
	for _, a := range accounts {
		if a.Role == models.RoleAdmin {
			continue
		}
		ranked = append(ranked, a)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score < ranked[j].Score
	})
	return ranked
}
