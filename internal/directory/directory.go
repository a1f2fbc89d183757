// Package directory caches the event list and the caller's own registrations.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"vereinsportal/internal/models"
)

// API is the slice of the portal client the directory needs.
type API interface {
	ListTermine(ctx context.Context) ([]models.Termin, error)
	ListMyTermine(ctx context.Context) ([]models.Termin, error)
}

// Directory is a read-through cache over the portal's event queries. A
// successful fetch replaces the cached value wholesale; a failed fetch leaves
// the prior value in place. There is no TTL and reads are not coalesced.
// Only the directory itself mutates the cache.
type Directory struct {
	api    API
	logger *slog.Logger

	mu      sync.Mutex
	termine []models.Termin
	mine    map[int]struct{}
}

// New creates an empty directory backed by the given API.
func New(logger *slog.Logger, api API) *Directory {
	return &Directory{
		api:    api,
		logger: logger,
		mine:   make(map[int]struct{}),
	}
}

// RefreshTermine fetches all events and replaces the cached list.
// Works without a session.
func (d *Directory) RefreshTermine(ctx context.Context) ([]models.Termin, error) {
	termine, err := d.api.ListTermine(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch termine: %w", err)
	}
	d.mu.Lock()
	d.termine = termine
	d.mu.Unlock()
	d.logger.Debug("Refreshed termin directory", "count", len(termine))
	return d.Termine(), nil
}

// RefreshMine fetches the events the current identity is registered for and
// replaces the cached membership set. Requires a session.
func (d *Directory) RefreshMine(ctx context.Context) error {
	termine, err := d.api.ListMyTermine(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch own termine: %w", err)
	}
	mine := make(map[int]struct{}, len(termine))
	for _, t := range termine {
		mine[t.ID] = struct{}{}
	}
	d.mu.Lock()
	d.mine = mine
	d.mu.Unlock()
	d.logger.Debug("Refreshed own registrations", "count", len(mine))
	return nil
}

// Termine returns a copy of the cached event list, in the order the server
// returned it.
func (d *Directory) Termine() []models.Termin {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.Termin, len(d.termine))
	copy(out, d.termine)
	return out
}

// Registered reports whether the cached membership set contains the event.
func (d *Directory) Registered(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.mine[id]
	return ok
}

// Mine returns a copy of the cached membership set.
func (d *Directory) Mine() map[int]struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[int]struct{}, len(d.mine))
	for id := range d.mine {
		out[id] = struct{}{}
	}
	return out
}
