package kvstore

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/seoulfit/seoulfit-api/internal/domain/history"
	"github.com/seoulfit/seoulfit-api/internal/domain/preference"
)

// ValkeyStore persists blobs in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs a store backed by Valkey. Keys are written as
// prefix:key; a positive ttl sets an expiry on every write.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "seoulfit"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *ValkeyStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(key)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, key string, payload []byte) error {
	builder := s.client.B().Set().Key(s.key(key)).Value(valkey.BinaryString(payload))
	var cmd valkey.Completed
	if s.ttl > 0 {
		ttl := s.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) key(key string) string {
	return s.prefix + ":" + key
}

var (
	_ history.Store    = (*ValkeyStore)(nil)
	_ preference.Store = (*ValkeyStore)(nil)
)
