package redis

import (
	"testing"
	"time"
)

func TestNewMailDedup_TTLDefaulting(t *testing.T) {
	if d := NewMailDedup(nil, 0); d.ttl != defaultDedupTTL {
		t.Fatalf("expected default ttl %v, got %v", defaultDedupTTL, d.ttl)
	}
	if d := NewMailDedup(nil, -time.Minute); d.ttl != defaultDedupTTL {
		t.Fatalf("negative ttl should fall back to default, got %v", d.ttl)
	}
	if d := NewMailDedup(nil, 10*time.Minute); d.ttl != 10*time.Minute {
		t.Fatalf("explicit ttl not kept, got %v", d.ttl)
	}
}

func TestMailDedup_KeyFormat(t *testing.T) {
	d := NewMailDedup(nil, 0)
	if got := d.key("verify", "u@example.com"); got != "mail:verify:u@example.com" {
		t.Fatalf("unexpected key %q", got)
	}
}
