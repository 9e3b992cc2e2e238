package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"wxhist-server/internal/modules/stations"
)

type stubClient struct {
	responses map[string]any
	errs      map[string]error
	calls     []string
}

func (s *stubClient) History(ctx context.Context, code string) (any, error) {
	s.calls = append(s.calls, code)
	if err, ok := s.errs[code]; ok {
		return nil, err
	}
	return s.responses[code], nil
}

type countingAdmitter struct {
	calls int
	err   error
}

func (a *countingAdmitter) Acquire(ctx context.Context) error {
	a.calls++
	return a.err
}

func bosStation() stations.Station {
	list := stations.Normalize([]any{
		map[string]any{"station_id": "BOS", "lat": 42.36, "lon": -71.06, "country": "US"},
	})
	return list[0]
}

func TestFetchSeries_EndToEnd(t *testing.T) {
	// BOS answers empty; KBOS has two raw rows, one of them corrupted.
	client := &stubClient{responses: map[string]any{
		"BOS": map[string]any{"points": []any{}},
		"KBOS": map[string]any{"points": []any{
			map[string]any{"timestamp": "2024-01-01 00:00", "temp": 5.0},
			map[string]any{"timestamp": "bad"},
		}},
	}}
	admit := &countingAdmitter{}
	f := NewFetcher(client, admit, nil)

	res, err := f.FetchSeries(context.Background(), bosStation(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FetchSeries() error = %v", err)
	}

	if len(client.calls) < 2 || client.calls[0] != "BOS" || client.calls[1] != "KBOS" {
		t.Fatalf("attempt order = %v, want BOS then KBOS", client.calls)
	}
	if res.UsedCode != "KBOS" {
		t.Errorf("UsedCode = %q, want KBOS", res.UsedCode)
	}
	if res.RowsReceived != 2 {
		t.Errorf("RowsReceived = %d, want 2", res.RowsReceived)
	}
	if res.RowsCoerced != 1 {
		t.Errorf("RowsCoerced = %d, want 1", res.RowsCoerced)
	}
	if dropped := res.RowsReceived - res.RowsCoerced; dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(res.Series) != 1 {
		t.Fatalf("Series = %d observations, want 1", len(res.Series))
	}
	obs := res.Series[0]
	if obs.Temp == nil || *obs.Temp != 5 {
		t.Errorf("Temp = %v, want 5", obs.Temp)
	}
	if obs.Wind != nil || obs.Gust != nil || obs.Precip != nil ||
		obs.Pressure != nil || obs.Humidity != nil || obs.Dewpoint != nil {
		t.Errorf("expected all metrics but temp absent: %+v", obs)
	}
	if admit.calls != len(client.calls) {
		t.Errorf("admissions = %d, upstream calls = %d; every call must be admitted", admit.calls, len(client.calls))
	}
}

func TestFetchSeries_ErrorsAreSwallowed(t *testing.T) {
	client := &stubClient{
		errs: map[string]error{
			"BOS":  errors.New("connection refused"),
			"KBOS": errors.New("status 500"),
		},
		responses: map[string]any{
			"bos": map[string]any{"data": []any{
				map[string]any{"time": "2024-02-01 12:00", "temp": 1.0},
			}},
		},
	}
	f := NewFetcher(client, &countingAdmitter{}, nil)

	res, err := f.FetchSeries(context.Background(), bosStation(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FetchSeries() error = %v, want errors swallowed", err)
	}
	if res.UsedCode != "bos" {
		t.Errorf("UsedCode = %q, want lowercase fallback bos", res.UsedCode)
	}
	if len(res.Series) != 1 {
		t.Errorf("Series = %d observations, want 1", len(res.Series))
	}
}

func TestFetchSeries_ExhaustionIsEmptyNotError(t *testing.T) {
	client := &stubClient{responses: map[string]any{}}
	f := NewFetcher(client, &countingAdmitter{}, nil)

	st := bosStation()
	res, err := f.FetchSeries(context.Background(), st, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FetchSeries() error = %v, want nil on exhaustion", err)
	}
	if res.UsedCode != "" {
		t.Errorf("UsedCode = %q, want empty", res.UsedCode)
	}
	if len(res.Series) != 0 {
		t.Errorf("Series = %d observations, want 0", len(res.Series))
	}

	// The final verbatim-sid attempt happens even though BOS was tried.
	last := client.calls[len(client.calls)-1]
	if last != st.SID {
		t.Errorf("final attempt = %q, want raw sid %q", last, st.SID)
	}
	if len(client.calls) != len(res.Candidates)+1 {
		t.Errorf("attempts = %d, want %d candidates + 1 fallback", len(client.calls), len(res.Candidates))
	}
}

func TestFetchSeries_SortsAscendingAndKeepsDuplicates(t *testing.T) {
	client := &stubClient{responses: map[string]any{
		"BOS": []any{
			map[string]any{"time": "2024-01-02 00:00", "temp": 2.0},
			map[string]any{"time": "2024-01-01 00:00", "temp": 1.0},
			map[string]any{"time": "2024-01-01 00:00", "temp": 3.0},
		},
	}}
	f := NewFetcher(client, &countingAdmitter{}, nil)

	res, err := f.FetchSeries(context.Background(), bosStation(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FetchSeries() error = %v", err)
	}
	if len(res.Series) != 3 {
		t.Fatalf("Series = %d observations, want 3 (duplicates kept)", len(res.Series))
	}
	for i := 1; i < len(res.Series); i++ {
		if res.Series[i].Time.Before(res.Series[i-1].Time) {
			t.Errorf("series not sorted ascending at %d: %v < %v", i, res.Series[i].Time, res.Series[i-1].Time)
		}
	}
	// Stable sort keeps the arrival order of equal timestamps.
	if *res.Series[0].Temp != 1 || *res.Series[1].Temp != 3 {
		t.Errorf("equal-timestamp order = %v, %v; want 1 then 3", *res.Series[0].Temp, *res.Series[1].Temp)
	}
}

func TestFetchSeries_RangeCounter(t *testing.T) {
	client := &stubClient{responses: map[string]any{
		"BOS": []any{
			map[string]any{"time": "2024-01-01 00:00"},
			map[string]any{"time": "2024-01-15 00:00"},
			map[string]any{"time": "2024-02-01 00:00"},
		},
	}}
	f := NewFetcher(client, &countingAdmitter{}, nil)

	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	res, err := f.FetchSeries(context.Background(), bosStation(), from, to)
	if err != nil {
		t.Fatalf("FetchSeries() error = %v", err)
	}
	if res.RowsInRange != 1 {
		t.Errorf("RowsInRange = %d, want 1", res.RowsInRange)
	}
	// The series itself is not truncated to the range.
	if len(res.Series) != 3 {
		t.Errorf("Series = %d observations, want all 3", len(res.Series))
	}
}

func TestFetchSeries_ContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(&stubClient{}, &countingAdmitter{err: context.Canceled}, nil)
	_, err := f.FetchSeries(ctx, bosStation(), time.Time{}, time.Time{})
	if err == nil {
		t.Error("FetchSeries() error = nil, want context error")
	}
}
