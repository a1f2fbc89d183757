package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vereinsportal/internal/models"
)

var berlin = time.FixedZone("CET", 1*60*60)

// terminAt builds a termin whose start lies at the given instant.
func terminAt(id int, start time.Time) models.Termin {
	return models.Termin{
		ID:    id,
		Title: "Termin",
		Date:  start.Format(models.DateLayout),
		Begin: start.Format(models.TimeLayout),
	}
}

func TestIsPast_GraceWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, berlin)

	// 25 hours ago is past, 23 hours ago is still actionable.
	assert.True(t, IsPast(terminAt(1, now.Add(-25*time.Hour)), now, berlin))
	assert.False(t, IsPast(terminAt(2, now.Add(-23*time.Hour)), now, berlin))
}

func TestIsPast_InvalidDate(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, berlin)
	assert.True(t, IsPast(models.Termin{ID: 9, Date: "soon"}, now, berlin))
}

func TestNextAndUpcoming(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, berlin)

	// A: tomorrow, all-day. B: in two days with times. C: long past.
	a := models.Termin{ID: 1, Title: "Arbeitseinsatz", Date: "2026-08-29"}
	b := models.Termin{ID: 2, Title: "Sommerfest", Date: "2026-08-30", Begin: "10:00", End: "12:00"}
	c := models.Termin{ID: 3, Title: "Altpapier", Date: "2026-08-01", Begin: "08:00"}
	termine := []models.Termin{b, a, c}

	next, ok := Next(termine, now, berlin)
	require.True(t, ok)
	assert.Equal(t, 1, next.ID)

	upcoming := Upcoming(termine, now, berlin)
	require.Len(t, upcoming, 1)
	assert.Equal(t, 2, upcoming[0].ID)
}

func TestNext_TieKeepsServerOrder(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, berlin)

	first := models.Termin{ID: 7, Date: "2026-08-29", Begin: "10:00"}
	second := models.Termin{ID: 8, Date: "2026-08-29", Begin: "10:00"}

	next, ok := Next([]models.Termin{first, second}, now, berlin)
	require.True(t, ok)
	assert.Equal(t, 7, next.ID)
}

func TestNext_NothingUpcoming(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, berlin)
	_, ok := Next([]models.Termin{terminAt(1, now.Add(-2*time.Hour))}, now, berlin)
	assert.False(t, ok)
}

func TestUpcoming_SortedByStart(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, berlin)

	termine := []models.Termin{
		{ID: 1, Date: "2026-09-10"},
		{ID: 2, Date: "2026-09-02"},
		{ID: 3, Date: "2026-08-29"}, // the next one, excluded
		{ID: 4, Date: "2026-09-02", Begin: "18:00"},
	}

	upcoming := Upcoming(termine, now, berlin)
	require.Len(t, upcoming, 3)
	assert.Equal(t, []int{2, 4, 1}, []int{upcoming[0].ID, upcoming[1].ID, upcoming[2].ID})
}

func TestEntries(t *testing.T) {
	a := models.Termin{ID: 1, Title: "Arbeitseinsatz", Date: "2026-08-29"}
	b := models.Termin{ID: 2, Title: "Sommerfest", Date: "2026-08-30", Begin: "10:00", End: "12:00"}
	onlyBegin := models.Termin{ID: 3, Title: "Training", Date: "2026-08-31", Begin: "19:00"}
	broken := models.Termin{ID: 4, Title: "kaputt", Date: "morgen"}

	entries := Entries([]models.Termin{a, b, onlyBegin, broken}, berlin)
	require.Len(t, entries, 3)

	// All-day: midnight start, end of day end.
	assert.True(t, entries[0].AllDay)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, berlin), entries[0].Start)
	assert.Equal(t, time.Date(2026, 8, 29, 23, 59, 59, 0, berlin), entries[0].End)

	// Timed: date plus begin/end.
	assert.False(t, entries[1].AllDay)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, berlin), entries[1].Start)
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, berlin), entries[1].End)

	// No end time falls back to the start time.
	assert.Equal(t, entries[2].Start, entries[2].End)
}

func TestRanking(t *testing.T) {
	accounts := []models.UserAccount{
		{Username: "chef", Role: models.RoleAdmin, Score: 0},
		{Username: "anna", Role: models.RoleUser, Score: 12},
		{Username: "ben", Role: models.RoleUser, Score: 3},
		{Username: "cleo", Role: models.RoleUser, Score: 3},
	}

	ranked := Ranking(accounts)
	require.Len(t, ranked, 3)
	for _, a := range ranked {
		assert.NotEqual(t, models.RoleAdmin, a.Role)
	}
	// Ascending by score, stable for ties.
	assert.Equal(t, "ben", ranked[0].Username)
	assert.Equal(t, "cleo", ranked[1].Username)
	assert.Equal(t, "anna", ranked[2].Username)
}
