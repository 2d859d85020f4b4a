package eventbus

import (
	"context"
	"testing"
)

func TestPresenceCacheNilIsHarmless(t *testing.T) {
	var p *PresenceCache
	if err := p.Touch(context.Background(), "mission1", "conn1"); err != nil {
		t.Fatalf("unexpected error from nil cache: %v", err)
	}
	has, err := p.HasSubscribers(context.Background(), "mission1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Error("expected nil presence cache to assume subscribers may exist")
	}
}

func TestNewPresenceCacheDefaultsTTL(t *testing.T) {
	p := NewPresenceCache(nil, 0)
	if p.ttl <= heartbeatTimeout {
		t.Errorf("expected default ttl to exceed heartbeatTimeout, got %v", p.ttl)
	}
}
