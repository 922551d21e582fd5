package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tourbooking/auth-service/internal/core/ports"
)

type collectingAuditService struct {
	mu     sync.Mutex
	events []ports.AuditEvent
	seen   chan struct{}
}

func newCollectingAuditService(capacity int) *collectingAuditService {
	return &collectingAuditService{seen: make(chan struct{}, capacity)}
}

func (s *collectingAuditService) Process(_ context.Context, event ports.AuditEvent) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	s.seen <- struct{}{}
	return nil
}

func (s *collectingAuditService) collected() []ports.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.AuditEvent(nil), s.events...)
}

func waitFor(t *testing.T, seen <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-seen:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	svc := newCollectingAuditService(8)
	d := NewDispatcher(2, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Publish(ports.AuditEvent{Type: ports.AuditLoginSucceeded, Email: "alice@example.com"})
	d.Publish(ports.AuditEvent{Type: ports.AuditLoginFailed, Email: "bob@example.com"})

	waitFor(t, svc.seen, 2)

	byEmail := make(map[string]ports.AuditEventType)
	for _, e := range svc.collected() {
		byEmail[e.Email] = e.Type
	}
	if byEmail["alice@example.com"] != ports.AuditLoginSucceeded ||
		byEmail["bob@example.com"] != ports.AuditLoginFailed {
		t.Fatalf("events missing or mismatched: %v", byEmail)
	}
}

// Events for one account all hash to the same worker, so they must come out
// in publication order even with several workers running.
func TestDispatcher_PreservesPerAccountOrder(t *testing.T) {
	const n = 50
	svc := newCollectingAuditService(n)
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < n; i++ {
		d.Publish(ports.AuditEvent{
			Type:   ports.AuditLoginFailed,
			Email:  "alice@example.com",
			Reason: fmt.Sprintf("attempt-%03d", i),
		})
	}

	waitFor(t, svc.seen, n)

	for i, e := range svc.collected() {
		if want := fmt.Sprintf("attempt-%03d", i); e.Reason != want {
			t.Fatalf("event %d out of order: got %s", i, e.Reason)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, nil, zerolog.Nop())

	first := d.shardIndex("alice@example.com")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("alice@example.com"); got != first {
			t.Fatalf("shard index not deterministic: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_DefaultsWorkerCount(t *testing.T) {
	d := NewDispatcher(0, nil, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

// Publish must never block the auth flow, even with no workers draining and
// the shard buffer full.
func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	d := NewDispatcher(1, nil, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < channelBuffer+10; i++ {
			d.Publish(ports.AuditEvent{Type: ports.AuditLoginSucceeded, Email: "alice@example.com"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Publish blocked on a full queue")
	}
}
