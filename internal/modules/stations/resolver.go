package stations

import "strings"

// Raw-record fields probed for identifier candidates, in priority order
// after the station's own sid and id.
var candidateRawFields = []string{
	"station_id", "icao", "wmo", "wmoid", "code", "uid", "site", "station",
}

// Candidates derives the ordered, deduplicated list of identifier strings
// to try against the upstream for one station. The order is the attempt
// order and therefore part of the contract:
//
//  1. sid, id, then the raw-record fields above, uppercased, first-seen
//     deduplicated;
//  2. K-prefixed variants of 3-letter entries for US stations (or any
//     station with a state), C-prefixed for CA, appended after the whole
//     base list;
//  3. every entry again in lowercase, after all uppercase entries.
//
// Pure function of the station's fields; no I/O.
func Candidates(st Station) []string {
	var base []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		base = append(base, s)
	}

	add(st.SID)
	add(st.ID)
	for _, f := range candidateRawFields {
		add(asText(st.Raw[f]))
	}

	country := strings.ToUpper(strings.TrimSpace(st.Country))
	var prefixed []string
	for _, c := range base {
		if len(c) != 3 {
			continue
		}
		if country == "US" || strings.TrimSpace(st.State) != "" {
			prefixed = append(prefixed, "K"+c)
		}
		if country == "CA" {
			prefixed = append(prefixed, "C"+c)
		}
	}

	upper := make([]string, 0, len(base)+len(prefixed))
	dedup := make(map[string]bool)
	for _, c := range append(base, prefixed...) {
		if !dedup[c] {
			dedup[c] = true
			upper = append(upper, c)
		}
	}

	out := make([]string, 0, 2*len(upper))
	final := make(map[string]bool)
	for _, c := range upper {
		if !final[c] {
			final[c] = true
			out = append(out, c)
		}
	}
	for _, c := range upper {
		lc := strings.ToLower(c)
		if !final[lc] {
			final[lc] = true
			out = append(out, lc)
		}
	}
	return out
}
