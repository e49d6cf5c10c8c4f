package preference

import (
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
)

// PushKey toggles location push notifications.
const PushKey = "push"

// StoragePrefix namespaces preference blobs per owner.
const StoragePrefix = "seoul-fit-preferences"

// Preferences holds which facility categories an owner wants on the map
// and whether location triggers may notify them.
type Preferences struct {
	Categories  map[search.Category]bool `json:"categories"`
	PushEnabled bool                     `json:"pushEnabled"`
	UpdatedAt   time.Time                `json:"updatedAt,omitempty"`
}

// Enabled reports whether cat is switched on.
func (p Preferences) Enabled(cat search.Category) bool {
	on, ok := p.Categories[cat]
	return !ok || on
}

// ToggleRequest names the preference to flip: a category or "push".
type ToggleRequest struct {
	Key string `json:"key"`
}

// Defaults turns every category and push on.
func Defaults() Preferences {
	cats := make(map[search.Category]bool, len(search.Categories()))
	for _, cat := range search.Categories() {
		cats[cat] = true
	}
	return Preferences{Categories: cats, PushEnabled: true}
}
