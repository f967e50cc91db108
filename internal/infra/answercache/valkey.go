// Package answercache stores generated answers keyed by their top supporting
// record, so repeated questions skip the generation call.
package answercache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

// ValkeyCache persists answers in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

var _ rag.AnswerCache = (*ValkeyCache)(nil)

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "faqrag"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// Get fetches a cached answer for the record.
func (c *ValkeyCache) Get(ctx context.Context, recordID int) (string, bool, error) {
	cmd := c.client.B().Get().Key(c.key(recordID)).Build()
	answer, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return answer, true, nil
}

// Set stores an answer with an optional TTL.
func (c *ValkeyCache) Set(ctx context.Context, recordID int, answer string, ttl time.Duration) error {
	builder := c.client.B().Set().Key(c.key(recordID)).Value(answer)
	if ttl > 0 {
		return c.client.Do(ctx, builder.Ex(ttl).Build()).Error()
	}
	return c.client.Do(ctx, builder.Build()).Error()
}

func (c *ValkeyCache) key(recordID int) string {
	return fmt.Sprintf("%s:answer:%d", c.prefix, recordID)
}
