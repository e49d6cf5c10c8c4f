package notificationstore

import (
	"context"
	"sort"
	"sync"

	"github.com/seoulfit/seoulfit-api/internal/domain/trigger"
)

// MemoryInbox keeps the newest notifications per owner in process memory.
type MemoryInbox struct {
	mu       sync.RWMutex
	byOwner  map[string][]trigger.Notification
	capacity int
}

// NewMemoryInbox constructs an inbox that retains at most capacity
// notifications per owner (0 means 100).
func NewMemoryInbox(capacity int) *MemoryInbox {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryInbox{byOwner: make(map[string][]trigger.Notification), capacity: capacity}
}

// Add prepends n to its owner's inbox and trims the oldest entries.
func (b *MemoryInbox) Add(_ context.Context, n trigger.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := append([]trigger.Notification{n}, b.byOwner[n.Owner]...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > b.capacity {
		items = items[:b.capacity]
	}
	b.byOwner[n.Owner] = items
	return nil
}

// List returns up to limit notifications, newest first.
func (b *MemoryInbox) List(_ context.Context, owner string, limit int) ([]trigger.Notification, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	items := b.byOwner[owner]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]trigger.Notification, len(items))
	copy(out, items)
	return out, nil
}

// UnreadCount counts unread notifications.
func (b *MemoryInbox) UnreadCount(_ context.Context, owner string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	count := 0
	for _, n := range b.byOwner[owner] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead flags one notification as read.
func (b *MemoryInbox) MarkRead(_ context.Context, owner, id string) (trigger.Notification, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.byOwner[owner]
	for i := range items {
		if items[i].ID == id {
			items[i].Read = true
			return items[i], true, nil
		}
	}
	return trigger.Notification{}, false, nil
}

var _ trigger.Inbox = (*MemoryInbox)(nil)
