package history

import "github.com/seoulfit/seoulfit-api/internal/domain/search"

const (
	// MaxEntries caps the number of distinct queries kept per owner.
	MaxEntries = 10
	// StorageKey is the fixed key the history blob is persisted under.
	StorageKey = "seoul-fit-search-history"
)

// Entry is one remembered search.
type Entry struct {
	ID           string       `json:"id"`
	Query        string       `json:"query"`
	Timestamp    int64        `json:"timestamp"`
	SelectedItem *search.Item `json:"selectedItem,omitempty"`
}

// AddRequest is accepted by Service.Add.
type AddRequest struct {
	Query        string       `json:"query"`
	SelectedItem *search.Item `json:"selectedItem,omitempty"`
}
