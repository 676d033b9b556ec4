package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = 2 * time.Minute

// MailDedup suppresses duplicate outbound mails backed by Redis. Delivery is
// best-effort, so a user double-posting a reset request inside the TTL gets
// one email, not two.
// Key format: mail:<kind>:<recipient>
type MailDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMailDedup creates a MailDedup wrapping the given Redis client. A ttl of
// zero or less falls back to the two-minute default.
func NewMailDedup(client *redis.Client, ttl time.Duration) *MailDedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &MailDedup{client: client, ttl: ttl}
}

// IsDuplicate reports whether an identical mail was dispatched inside the TTL.
func (d *MailDedup) IsDuplicate(ctx context.Context, kind, recipient string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(kind, recipient)).Result()
	if err != nil {
		return false, fmt.Errorf("mail dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that a mail of this kind went out to the recipient.
func (d *MailDedup) Mark(ctx context.Context, kind, recipient string) error {
	return d.client.Set(ctx, d.key(kind, recipient), "1", d.ttl).Err()
}

func (d *MailDedup) key(kind, recipient string) string {
	return fmt.Sprintf("mail:%s:%s", kind, recipient)
}
