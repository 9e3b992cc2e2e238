package stations

// Station is the canonical station entity built from one raw upstream
// record. It is immutable after catalog load; per-request candidate codes
// and the code that finally worked live on the fetch result, not here.
type Station struct {
	SID     string  `json:"sid"`
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`

	// Raw keeps the untouched source record for candidate-code derivation.
	Raw map[string]any `json:"-"`
}
