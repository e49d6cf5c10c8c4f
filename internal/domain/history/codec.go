package history

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
)

// decodeEntries parses a persisted blob. Anything that is not a JSON array
// yields an empty history, and entries without a string id, a string query
// and a numeric timestamp are skipped.
func decodeEntries(raw []byte) []Entry {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []Entry{}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []Entry{}
	}
	out := make([]Entry, 0, len(elems))
	for _, elem := range elems {
		if entry, ok := decodeEntry(elem); ok {
			out = append(out, entry)
		}
	}
	return out
}

func decodeEntry(raw json.RawMessage) (Entry, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Entry{}, false
	}
	var entry Entry
	if !decodeField(fields, "id", &entry.ID) || !decodeField(fields, "query", &entry.Query) {
		return Entry{}, false
	}
	var ts float64
	if !decodeField(fields, "timestamp", &ts) {
		return Entry{}, false
	}
	entry.Timestamp = int64(ts)

	if rawItem, ok := fields["selectedItem"]; ok && !isNull(rawItem) {
		var item search.Item
		if err := json.Unmarshal(rawItem, &item); err == nil && item.ID != "" {
			entry.SelectedItem = &item
		}
	}
	return entry, true
}

func decodeField(fields map[string]json.RawMessage, name string, dst any) bool {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func encodeEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// compact keeps the newest entry per case-insensitive trimmed query, orders
// newest first and caps the list at MaxEntries.
func compact(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, entry := range entries {
		key := dedupeKey(entry.Query)
		if at, ok := index[key]; ok {
			if entry.Timestamp > out[at].Timestamp {
				out[at] = entry
			}
			continue
		}
		index[key] = len(out)
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

func dedupeKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
