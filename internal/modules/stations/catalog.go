package stations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"wxhist-server/internal/journal"
)

// Lister is the upstream station-list operation.
type Lister interface {
	Stations(ctx context.Context) (any, error)
}

// Admitter gates every upstream call through the shared rate bucket.
type Admitter interface {
	Acquire(ctx context.Context) error
}

// Catalog owns the station set for its load epoch. Loads replace the set
// wholesale; there are no incremental updates.
type Catalog struct {
	client  Lister
	admit   Admitter
	journal *journal.Journal

	mu       sync.RWMutex
	stations []Station
	loaded   bool
}

func NewCatalog(client Lister, admit Admitter, j *journal.Journal) *Catalog {
	return &Catalog{client: client, admit: admit, journal: j}
}

// Load fetches and normalizes the station listing, replacing the current
// epoch. This is the one failure in the system that surfaces to callers.
func (c *Catalog) Load(ctx context.Context) error {
	if err := c.admit.Acquire(ctx); err != nil {
		return fmt.Errorf("station list admission: %w", err)
	}

	start := time.Now()
	raw, err := c.client.Stations(ctx)
	if err != nil {
		c.journal.Record(ctx, journal.Attempt{
			Endpoint:  "/stations",
			Outcome:   journal.OutcomeError,
			Duration:  time.Since(start),
			Detail:    err.Error(),
			StartedAt: start,
		})
		return fmt.Errorf("station list fetch: %w", err)
	}

	normalized := Normalize(raw)
	c.journal.Record(ctx, journal.Attempt{
		Endpoint:     "/stations",
		Outcome:      journal.OutcomeOK,
		RowsReceived: len(normalized),
		Duration:     time.Since(start),
		StartedAt:    start,
	})

	c.mu.Lock()
	c.stations = normalized
	c.loaded = true
	c.mu.Unlock()

	slog.Info("station catalog loaded", "stations", len(normalized))
	return nil
}

// Stations returns the full catalog, loading it on first use. The returned
// slice is a copy; callers cannot mutate the epoch.
func (c *Catalog) Stations(ctx context.Context) ([]Station, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Station, len(c.stations))
	copy(out, c.stations)
	return out, nil
}

// Search filters the catalog case-insensitively. A blank term returns the
// full catalog. A station matches when the uppercased term is a substring
// of its display blob or of any candidate code; a term with a leading K or
// C is also retried with that prefix stripped, so "KBOS" still finds a
// station listed as "BOS".
func (c *Catalog) Search(ctx context.Context, term string) ([]Station, error) {
	all, err := c.Stations(ctx)
	if err != nil {
		return nil, err
	}
	return searchStations(all, term), nil
}

// Get looks a station up by its sid or id, case-insensitively.
func (c *Catalog) Get(ctx context.Context, key string) (Station, bool, error) {
	if err := c.ensure(ctx); err != nil {
		return Station{}, false, err
	}

	k := strings.ToUpper(strings.TrimSpace(key))
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, st := range c.stations {
		if strings.ToUpper(st.SID) == k || strings.ToUpper(st.ID) == k {
			return st, true, nil
		}
	}
	return Station{}, false, nil
}

func (c *Catalog) ensure(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Load(ctx)
}

func searchStations(all []Station, term string) []Station {
	q := strings.ToUpper(strings.TrimSpace(term))
	if q == "" {
		return all
	}

	stripped := q
	if len(q) > 1 && (q[0] == 'K' || q[0] == 'C') {
		stripped = q[1:]
	}

	out := make([]Station, 0, len(all))
	for _, st := range all {
		blob := strings.ToUpper(strings.Join([]string{st.SID, st.ID, st.Name, st.State, st.Country}, " "))
		if strings.Contains(blob, q) {
			out = append(out, st)
			continue
		}
		for _, code := range Candidates(st) {
			uc := strings.ToUpper(code)
			if strings.Contains(uc, q) || (stripped != q && strings.Contains(uc, stripped)) {
				out = append(out, st)
				break
			}
		}
	}
	return out
}
