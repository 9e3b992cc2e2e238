package stations

import (
	"math"
	"strconv"
	"strings"
)

// Field fallback chains. The upstream names nothing consistently, so each
// canonical field is the first non-empty hit in an ordered alias list.
var (
	sidFields     = []string{"sid", "station_id", "icao", "id", "code"}
	idFields      = []string{"id", "station_id", "sid", "icao"}
	nameFields    = []string{"name", "station_name", "title"}
	countryFields = []string{"country", "country_code"}
	stateFields   = []string{"state", "province"}
	latFields     = []string{"lat", "latitude", "y"}
	lonFields     = []string{"lon", "lng", "longitude", "x"}
)

// Normalize maps a raw station listing into canonical stations. The
// listing may be a top-level array or an object with a "stations" array;
// any other shape yields an empty catalog. Entries without finite
// coordinates are silently dropped.
func Normalize(raw any) []Station {
	var entries []any
	switch t := raw.(type) {
	case []any:
		entries = t
	case map[string]any:
		arr, ok := t["stations"].([]any)
		if !ok {
			return nil
		}
		entries = arr
	default:
		return nil
	}

	out := make([]Station, 0, len(entries))
	for _, entry := range entries {
		rec, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		lat, latOK := firstFinite(rec, latFields)
		lon, lonOK := firstFinite(rec, lonFields)
		if !latOK || !lonOK {
			continue
		}

		out = append(out, Station{
			SID:     firstText(rec, sidFields),
			ID:      firstText(rec, idFields),
			Name:    firstText(rec, nameFields),
			Country: firstText(rec, countryFields),
			State:   firstText(rec, stateFields),
			Lat:     lat,
			Lon:     lon,
			Raw:     rec,
		})
	}
	return out
}

func firstText(rec map[string]any, fields []string) string {
	for _, f := range fields {
		if s := asText(rec[f]); s != "" {
			return s
		}
	}
	return ""
}

func firstFinite(rec map[string]any, fields []string) (float64, bool) {
	for _, f := range fields {
		if v, ok := asFinite(rec[f]); ok {
			return v, true
		}
	}
	return 0, false
}

// asText coerces identifier-ish values to text. Objects, arrays, booleans
// and nulls are not identifiers.
func asText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func asFinite(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
