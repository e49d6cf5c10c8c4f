package history

import "context"

// Store persists the raw history blob of an owner.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// OwnerKey namespaces StorageKey by owner.
func OwnerKey(owner string) string {
	return StorageKey + ":" + owner
}
