package history

import (
	"math"
	"regexp"
	"strings"
)

// timeKeyRe finds the time-bearing key in a raw row. Substring match, like
// the field names the upstream actually uses (timestamp, obs_time, date,
// ts, ...).
var timeKeyRe = regexp.MustCompile(`(?i)time|ts|timestamp|obs_time|date`)

// Ordered alias tables per metric. First present-and-finite alias wins;
// non-numeric values are skipped, never coerced.
var (
	tempAliases     = []string{"temp", "temperature", "tmpf", "air_temp"}
	windAliases     = []string{"wind_speed", "wspd", "windspd", "windspeed"}
	gustAliases     = []string{"wind_gust", "wgust", "gust"}
	precipAliases   = []string{"precip", "precipitation", "precip_mm", "rain"}
	pressureAliases = []string{"pressure", "press", "baro", "slp", "pressure_hpa"}
	humidityAliases = []string{"humidity", "rh", "relative_humidity", "humidity_pct"}
	dewpointAliases = []string{"dewpoint", "dewpt", "dew_point", "dewpoint_temp"}
)

// Coerce maps one raw row into a canonical observation. Rows that are not
// objects, or whose first time-bearing key does not parse, are corrupted
// and dropped (ok is false); the caller counts them for diagnostics.
func Coerce(row any) (Observation, bool) {
	rec, ok := row.(map[string]any)
	if !ok {
		return Observation{}, false
	}

	keys := sortedKeys(rec)

	var obs Observation
	found := false
	for _, k := range keys {
		if !timeKeyRe.MatchString(k) {
			continue
		}
		ts, ok := ParseTime(rec[k])
		if !ok {
			return Observation{}, false
		}
		obs.Time = ts
		found = true
		break
	}
	if !found {
		return Observation{}, false
	}

	// Case-insensitive view; later keys overwrite earlier ones.
	view := make(map[string]any, len(rec))
	for _, k := range keys {
		view[strings.ToLower(k)] = rec[k]
	}

	pick := func(aliases []string) *float64 {
		for _, a := range aliases {
			if f, ok := finite(view[a]); ok {
				return &f
			}
		}
		return nil
	}

	obs.Temp = pick(tempAliases)
	obs.Gust = pick(gustAliases)
	obs.Precip = pick(precipAliases)
	obs.Pressure = pick(pressureAliases)
	obs.Humidity = pick(humidityAliases)
	obs.Dewpoint = pick(dewpointAliases)

	obs.Wind = pick(windAliases)
	if obs.Wind == nil {
		x, okX := finite(view["wind_x"])
		y, okY := finite(view["wind_y"])
		if okX && okY {
			speed := math.Hypot(x, y)
			obs.Wind = &speed
		}
	}

	return obs, true
}

func finite(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
