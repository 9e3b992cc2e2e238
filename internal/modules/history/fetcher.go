package history

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"wxhist-server/internal/journal"
	"wxhist-server/internal/modules/stations"
)

// Client is the upstream history operation.
type Client interface {
	History(ctx context.Context, code string) (any, error)
}

// Admitter gates every upstream call through the shared rate bucket.
type Admitter interface {
	Acquire(ctx context.Context) error
}

// Fetcher resolves a station to a canonical observation series by trying
// candidate codes in order until one yields rows.
type Fetcher struct {
	client  Client
	admit   Admitter
	journal *journal.Journal
}

func NewFetcher(client Client, admit Admitter, j *journal.Journal) *Fetcher {
	return &Fetcher{client: client, admit: admit, journal: j}
}

// FetchSeries iterates the station's candidate codes through the
// scheduler; the first candidate whose response unwraps to a non-empty row
// list wins and is reported as UsedCode. Per-candidate failures are
// swallowed and iteration continues. When every candidate is exhausted,
// one final attempt uses the raw sid verbatim. Exhaustion is not an error:
// the result is an empty series with an empty UsedCode. The only error
// returned is the caller's context ending.
func (f *Fetcher) FetchSeries(ctx context.Context, st stations.Station, from, to time.Time) (Result, error) {
	res := Result{Candidates: stations.Candidates(st)}

	var rows []any
	for _, code := range res.Candidates {
		got, err := f.attempt(ctx, code)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			continue
		}
		if len(got) > 0 {
			rows = got
			res.UsedCode = code
			break
		}
	}

	if len(rows) == 0 {
		if sid := strings.TrimSpace(st.SID); sid != "" {
			got, err := f.attempt(ctx, sid)
			if err != nil && ctx.Err() != nil {
				return res, ctx.Err()
			}
			if err == nil && len(got) > 0 {
				rows = got
				res.UsedCode = sid
			}
		}
	}

	res.RowsReceived = len(rows)
	res.Series = make([]Observation, 0, len(rows))
	for _, row := range rows {
		obs, ok := Coerce(row)
		if !ok {
			continue
		}
		res.Series = append(res.Series, obs)
		if inRange(obs.Time, from, to) {
			res.RowsInRange++
		}
	}
	res.RowsCoerced = len(res.Series)

	sort.SliceStable(res.Series, func(i, j int) bool {
		return res.Series[i].Time.Before(res.Series[j].Time)
	})

	if res.UsedCode == "" {
		slog.Debug("resolution exhausted", "sid", st.SID, "candidates", len(res.Candidates))
	}
	return res, nil
}

// attempt runs one admitted upstream call and unwraps the rows.
func (f *Fetcher) attempt(ctx context.Context, code string) ([]any, error) {
	if err := f.admit.Acquire(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := f.client.History(ctx, code)
	if err != nil {
		f.journal.Record(ctx, journal.Attempt{
			Endpoint:    "/historical_weather",
			StationCode: code,
			Outcome:     journal.OutcomeError,
			Duration:    time.Since(start),
			Detail:      err.Error(),
			StartedAt:   start,
		})
		slog.Debug("candidate fetch failed", "code", code, "error", err)
		return nil, err
	}

	rows := ExtractRows(resp)
	outcome := journal.OutcomeOK
	if len(rows) == 0 {
		outcome = journal.OutcomeEmpty
	}
	f.journal.Record(ctx, journal.Attempt{
		Endpoint:     "/historical_weather",
		StationCode:  code,
		Outcome:      outcome,
		RowsReceived: len(rows),
		Duration:     time.Since(start),
		StartedAt:    start,
	})
	return rows, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}
