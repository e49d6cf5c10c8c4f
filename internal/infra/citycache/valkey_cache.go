package citycache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/seoulfit/seoulfit-api/internal/domain/citydata"
)

// ValkeyCache shares citydata answers across instances.
type ValkeyCache struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyCache constructs the cache. Entries expire after ttl.
func NewValkeyCache(client valkey.Client, prefix string, ttl time.Duration) *ValkeyCache {
	if prefix == "" {
		prefix = "seoulfit:citydata"
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return &ValkeyCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *ValkeyCache) Get(ctx context.Context, code string) (citydata.Area, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(code)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return citydata.Area{}, false, nil
		}
		return citydata.Area{}, false, err
	}
	var area citydata.Area
	if err := json.Unmarshal(payload, &area); err != nil {
		return citydata.Area{}, false, err
	}
	return area, true, nil
}

func (c *ValkeyCache) Put(ctx context.Context, area citydata.Area) error {
	payload, err := json.Marshal(area)
	if err != nil {
		return err
	}
	cmd := c.client.B().Set().Key(c.key(area.Code)).Value(valkey.BinaryString(payload)).Ex(c.ttl).Build()
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) key(code string) string {
	return c.prefix + ":" + code
}

var _ citydata.Cache = (*ValkeyCache)(nil)
