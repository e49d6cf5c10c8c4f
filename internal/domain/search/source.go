package search

import "context"

// ItemSource loads the full set of searchable items.
type ItemSource interface {
	LoadItems(ctx context.Context) ([]Item, error)
}
