package history

import "time"

// Observation is one normalized, time-stamped weather reading. Metrics the
// upstream row did not carry stay nil; a missing value is never zero.
type Observation struct {
	Time     time.Time `json:"time"`
	Temp     *float64  `json:"temp,omitempty"`
	Wind     *float64  `json:"wind,omitempty"`
	Gust     *float64  `json:"gust,omitempty"`
	Precip   *float64  `json:"precip,omitempty"`
	Pressure *float64  `json:"pressure,omitempty"`
	Humidity *float64  `json:"humidity,omitempty"`
	Dewpoint *float64  `json:"dewpoint,omitempty"`
}

// Result is the outcome of one fetch resolution. Candidates and UsedCode
// live here rather than on the station so the station entity stays
// immutable; counters are diagnostics, not part of the series.
type Result struct {
	Series     []Observation `json:"series"`
	Candidates []string      `json:"candidates"`
	// UsedCode is the candidate that finally yielded rows; empty when
	// resolution was exhausted.
	UsedCode     string `json:"usedCode"`
	RowsReceived int    `json:"rowsReceived"`
	RowsCoerced  int    `json:"rowsCoerced"`
	RowsInRange  int    `json:"rowsInRange"`
}
