// Package calsync pushes upcoming club termine into the member's personal
// calendars and remembers what has already been pushed.
package calsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"vereinsportal/internal/dashboard"
	"vereinsportal/internal/icloud"
)

// Target is a personal calendar that entries can be pushed to.
type Target interface {
	Name() string
	Push(ctx context.Context, entry dashboard.Entry, uid string) error
}

// SyncState maps a termin id (as a string key) to the iCal UID it was pushed
// under, so repeated syncs do not duplicate entries.
type SyncState map[string]string

// Syncer pushes calendar entries to one or more targets.
type Syncer struct {
	logger    *slog.Logger
	targets   []Target
	state     SyncState
	stateFile string
	dryRun    bool
}

// NewSyncer creates a Syncer, loading prior sync state from stateFile.
func NewSyncer(logger *slog.Logger, targets []Target, stateFile string, dryRun bool) (*Syncer, error) {
	state, err := loadState(stateFile)
	if err != nil {
		// If the file doesn't exist, we can start with an empty state.
		if os.IsNotExist(err) {
			logger.Info("No sync state file found, starting fresh.", "file", stateFile)
			state = make(SyncState)
		} else {
			return nil, fmt.Errorf("failed to load sync state: %w", err)
		}
	}

	return &Syncer{
		logger:    logger,
		targets:   targets,
		state:     state,
		stateFile: stateFile,
		dryRun:    dryRun,
	}, nil
}

// Sync pushes every not-yet-synced entry to all targets. One failing entry
// does not stop the others.
func (s *Syncer) Sync(ctx context.Context, entries []dashboard.Entry) error {
	s.logger.Info("Starting calendar sync.", "entries", len(entries), "targets", len(s.targets))

	for _, entry := range entries {
		if err := s.syncEntry(ctx, entry); err != nil {
			s.logger.Error("Failed to sync entry", "title", entry.Title, "error", err)
		}
	}

	if !s.dryRun {
		if err := s.saveState(); err != nil {
			s.logger.Error("Failed to save sync state", "error", err)
		}
	}

	s.logger.Info("Calendar sync finished.")
	return nil
}

// syncEntry pushes a single entry to all targets, unless it was synced before.
func (s *Syncer) syncEntry(ctx context.Context, entry dashboard.Entry) error {
	key := strconv.Itoa(entry.TerminID)
	if _, exists := s.state[key]; exists {
		s.logger.Debug("Entry already synced, skipping.", "title", entry.Title, "terminID", entry.TerminID)
		return nil
	}

	uid := icloud.GenerateUID()

	if s.dryRun {
		s.logger.Info("[DRY RUN] Would push entry", "title", entry.Title, "start", entry.Start, "allDay", entry.AllDay)
		return nil
	}

	for _, target := range s.targets {
		if err := target.Push(ctx, entry, uid); err != nil {
			return fmt.Errorf("failed to push to %s: %w", target.Name(), err)
		}
	}

	s.state[key] = uid
	return nil
}

// loadState loads the sync state from the JSON file.
func loadState(path string) (SyncState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return state, nil
}

// saveState saves the current sync state to the JSON file.
func (s *Syncer) saveState() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sync state: %w", err)
	}
	return os.WriteFile(s.stateFile, data, 0644)
}
