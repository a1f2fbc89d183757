// Package attendance toggles a member's registration for a termin.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"vereinsportal/internal/directory"
	"vereinsportal/internal/portal"
	"vereinsportal/internal/session"
)

// ErrToggleInFlight is returned when a toggle for the same termin is already
// outstanding. The second call is rejected, never queued.
var ErrToggleInFlight = errors.New("a signup request for this termin is already in flight")

// API is the slice of the portal client the controller needs.
type API interface {
	JoinTermin(ctx context.Context, id int) error
	LeaveTermin(ctx context.Context, id int) error
}

// Controller performs join/leave calls with at most one outstanding request
// per termin id. The cached membership set is only ever updated from a fresh
// re-read of the server's own-events view, never from optimistic intent.
type Controller struct {
	api      API
	dir      *directory.Directory
	sessions *session.Store
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[int]struct{}
}

// NewController creates a controller over the given client, directory and
// session store.
func NewController(logger *slog.Logger, api API, dir *directory.Directory, sessions *session.Store) *Controller {
	return &Controller{
		api:      api,
		dir:      dir,
		sessions: sessions,
		logger:   logger,
		inFlight: make(map[int]struct{}),
	}
}

// Toggle issues a join request when registered is false and a leave request
// otherwise. The in-flight marker for the termin is acquired before the
// request starts and released unconditionally when it settles. On failure the
// cached membership set is left untouched.
func (c *Controller) Toggle(ctx context.Context, terminID int, registered bool) error {
	if _, ok := c.sessions.Current(); !ok {
		return portal.ErrNoSession
	}
	if !c.acquire(terminID) {
		return ErrToggleInFlight
	}
	defer c.release(terminID)

	var err error
	if registered {
		c.logger.Info("Cancelling registration", "terminID", terminID)
		err = c.api.LeaveTermin(ctx, terminID)
	} else {
		c.logger.Info("Registering for termin", "terminID", terminID)
		err = c.api.JoinTermin(ctx, terminID)
	}
	if err != nil {
		return fmt.Errorf("failed to toggle attendance for termin %d: %w", terminID, err)
	}

	// Re-read the server's own-events view so the cache reflects confirmed
	// state rather than assumed intent.
	if err := c.dir.RefreshMine(ctx); err != nil {
		return fmt.Errorf("attendance changed but refresh failed: %w", err)
	}
	return nil
}

// acquire sets the in-flight marker for the termin. It reports false when a
// toggle is already outstanding.
func (c *Controller) acquire(terminID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inFlight[terminID]; busy {
		return false
	}
	c.inFlight[terminID] = struct{}{}
	return true
}

func (c *Controller) release(terminID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, terminID)
}
