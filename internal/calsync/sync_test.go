package calsync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vereinsportal/internal/dashboard"
)

type fakeTarget struct {
	name   string
	pushed []dashboard.Entry
	err    error
}

func (f *fakeTarget) Name() string { return f.name }

func (f *fakeTarget) Push(ctx context.Context, entry dashboard.Entry, uid string) error {
	if f.err != nil {
		return f.err
	}
	f.pushed = append(f.pushed, entry)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func entry(id int, title string) dashboard.Entry {
	return dashboard.Entry{
		TerminID: id,
		Title:    title,
		Start:    time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSync_PushesAndRemembers(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "sync-state.json")
	target := &fakeTarget{name: "fake"}

	s, err := NewSyncer(testLogger(), []Target{target}, stateFile, false)
	require.NoError(t, err)

	entries := []dashboard.Entry{entry(1, "Arbeitseinsatz"), entry(2, "Sommerfest")}
	require.NoError(t, s.Sync(context.Background(), entries))
	assert.Len(t, target.pushed, 2)

	// A second syncer over the same state file skips what was already pushed.
	target2 := &fakeTarget{name: "fake"}
	s2, err := NewSyncer(testLogger(), []Target{target2}, stateFile, false)
	require.NoError(t, err)
	require.NoError(t, s2.Sync(context.Background(), entries))
	assert.Empty(t, target2.pushed)
}

func TestSync_DryRunTouchesNothing(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "sync-state.json")
	target := &fakeTarget{name: "fake"}

	s, err := NewSyncer(testLogger(), []Target{target}, stateFile, true)
	require.NoError(t, err)
	require.NoError(t, s.Sync(context.Background(), []dashboard.Entry{entry(1, "Arbeitseinsatz")}))

	assert.Empty(t, target.pushed)
	_, statErr := os.Stat(stateFile)
	assert.True(t, os.IsNotExist(statErr), "dry run must not write state")
}

func TestSync_TargetFailureDoesNotMarkSynced(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "sync-state.json")
	target := &fakeTarget{name: "fake", err: errors.New("kaputt")}

	s, err := NewSyncer(testLogger(), []Target{target}, stateFile, false)
	require.NoError(t, err)
	require.NoError(t, s.Sync(context.Background(), []dashboard.Entry{entry(1, "Arbeitseinsatz")}))

	// Next run retries the failed entry.
	target.err = nil
	require.NoError(t, s.Sync(context.Background(), []dashboard.Entry{entry(1, "Arbeitseinsatz")}))
	assert.Len(t, target.pushed, 1)
}
