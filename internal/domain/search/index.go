package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

type indexEntry struct {
	item     Item
	fields   []string
	priority int
	nameLen  int
}

// Index is an immutable in-memory view over the searchable items.
type Index struct {
	entries []indexEntry
}

// NewIndex precomputes the search fields of every item.
func NewIndex(items []Item) *Index {
	entries := make([]indexEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, indexEntry{
			item:     item,
			fields:   SearchFields(item),
			priority: item.Category.Priority(),
			nameLen:  utf8.RuneCountInString(item.Name),
		})
	}
	return &Index{entries: entries}
}

// Len returns the number of indexed items.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// SearchFields returns the name followed by the comma separated pieces of
// the address, remark and aliases, trimmed and without empty pieces.
func SearchFields(item Item) []string {
	fields := []string{strings.TrimSpace(item.Name)}
	for _, raw := range []string{item.Address, item.Remark, item.Aliases} {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				fields = append(fields, part)
			}
		}
	}
	return fields
}

type scoredEntry struct {
	entry *indexEntry
	score int
}

// Search ranks the index against query and returns at most limit items.
func (ix *Index) Search(query string, limit int) []Item {
	if ix == nil || strings.TrimSpace(query) == "" || limit <= 0 {
		return []Item{}
	}

	matches := make([]scoredEntry, 0, 32)
	for i := range ix.entries {
		entry := &ix.entries[i]
		best := ScoreNone
		for _, field := range entry.fields {
			if s := Score(field, query); s > best {
				best = s
				if best == ScoreExact {
					break
				}
			}
		}
		if best > ScoreNone {
			matches = append(matches, scoredEntry{entry: entry, score: best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.entry.priority != b.entry.priority {
			return a.entry.priority < b.entry.priority
		}
		return a.entry.nameLen < b.entry.nameLen
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Item, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.entry.item)
	}
	return out
}
