package directory

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vereinsportal/internal/models"
)

type fakeAPI struct {
	termine []models.Termin
	mine    []models.Termin
	err     error
}

func (f *fakeAPI) ListTermine(ctx context.Context) ([]models.Termin, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.termine, nil
}

func (f *fakeAPI) ListMyTermine(ctx context.Context) ([]models.Termin, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.mine, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestDirectory_RefreshReplacesWholesale(t *testing.T) {
	api := &fakeAPI{termine: []models.Termin{
		{ID: 1, Title: "Arbeitseinsatz", Date: "2026-09-01"},
		{ID: 2, Title: "Sommerfest", Date: "2026-09-02"},
	}}
	dir := New(testLogger(), api)

	termine, err := dir.RefreshTermine(context.Background())
	require.NoError(t, err)
	require.Len(t, termine, 2)
	assert.Equal(t, 1, termine[0].ID, "server order is preserved")

	api.termine = []models.Termin{{ID: 3, Title: "Altpapier", Date: "2026-09-05"}}
	termine, err = dir.RefreshTermine(context.Background())
	require.NoError(t, err)
	require.Len(t, termine, 1)
	assert.Equal(t, 3, termine[0].ID)
}

func TestDirectory_RefreshMine(t *testing.T) {
	api := &fakeAPI{mine: []models.Termin{{ID: 2, Date: "2026-09-02"}}}
	dir := New(testLogger(), api)

	assert.False(t, dir.Registered(2))
	require.NoError(t, dir.RefreshMine(context.Background()))
	assert.True(t, dir.Registered(2))
	assert.False(t, dir.Registered(1))

	api.mine = nil
	require.NoError(t, dir.RefreshMine(context.Background()))
	assert.False(t, dir.Registered(2), "refresh replaces the set wholesale")
}

func TestDirectory_FailedRefreshKeepsPriorCache(t *testing.T) {
	api := &fakeAPI{
		termine: []models.Termin{{ID: 1, Date: "2026-09-01"}},
		mine:    []models.Termin{{ID: 1, Date: "2026-09-01"}},
	}
	dir := New(testLogger(), api)
	_, err := dir.RefreshTermine(context.Background())
	require.NoError(t, err)
	require.NoError(t, dir.RefreshMine(context.Background()))

	api.err = errors.New("boom")
	_, err = dir.RefreshTermine(context.Background())
	assert.Error(t, err)
	assert.Error(t, dir.RefreshMine(context.Background()))

	assert.Len(t, dir.Termine(), 1, "prior cache stays in place")
	assert.True(t, dir.Registered(1))
}

func TestDirectory_AccessorsReturnCopies(t *testing.T) {
	api := &fakeAPI{termine: []models.Termin{{ID: 1, Title: "a", Date: "2026-09-01"}}}
	dir := New(testLogger(), api)
	_, err := dir.RefreshTermine(context.Background())
	require.NoError(t, err)

	got := dir.Termine()
	got[0].Title = "mutated"
	assert.Equal(t, "a", dir.Termine()[0].Title)

	mine := dir.Mine()
	mine[99] = struct{}{}
	assert.False(t, dir.Registered(99))
}
