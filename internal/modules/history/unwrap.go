package history

import "sort"

// Keys probed for the record array inside a keyed response, in priority
// order.
var rowKeys = []string{
	"points", "observations", "history", "data", "results", "records", "items",
}

// ExtractRows locates the array of raw records inside an arbitrarily
// shaped response: the response itself, a known key, or failing that the
// first array-valued property in sorted-key order (JSON key order is not
// observable through a decoded map). Unrecognized shapes degrade to no
// rows; this never fails.
func ExtractRows(response any) []any {
	switch t := response.(type) {
	case []any:
		return t
	case map[string]any:
		for _, k := range rowKeys {
			if arr, ok := t[k].([]any); ok {
				return arr
			}
		}
		for _, k := range sortedKeys(t) {
			if arr, ok := t[k].([]any); ok {
				return arr
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
