package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: EventStrategyRejected, Data: map[string]string{"artifact": "rejected/strategy-1.md"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: strategy.rejected") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"artifact":"rejected/strategy-1.md"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishChange_OverviewThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First change triggers overview.updated, the second is throttled.
	b.PublishChange(Event{Type: EventDatasetReloaded, Data: map[string]any{"paths": []string{"skills.json"}}})
	b.PublishChange(Event{Type: EventStrategyAccepted, Data: map[string]string{"id": "p1"}})

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	overviewCount := 0
	changeCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, EventOverviewUpdated) {
				overviewCount++
			} else {
				changeCount++
			}
		default:
			break loop
		}
	}

	if changeCount != 2 {
		t.Errorf("change events = %d, want 2", changeCount)
	}
	if overviewCount != 1 {
		t.Errorf("overview events = %d, want 1 (throttled)", overviewCount)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: EventDatasetReloaded, Data: map[string]any{"paths": []string{"employees.json"}}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: dataset.reloaded") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill the client buffer (capacity 64); extra events must not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: EventOverviewUpdated, Data: map[string]int{"i": i}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: EventDatasetReloaded, Data: nil})
	b.PublishChange(Event{Type: EventStrategyAccepted, Data: nil})
}

// next waits for one message on ch.
func next(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func TestOverviewCarriesCurrentOverview(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	b.SetOverview(func() any { return map[string]int{"goals": 2, "employees": 3} })
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishChange(Event{Type: EventDatasetReloaded, Data: map[string]int{"goals": 2}})

	if msg := next(t, ch); !strings.Contains(msg, "event: "+EventDatasetReloaded) {
		t.Fatalf("first message = %q", msg)
	}
	msg := next(t, ch)
	if !strings.Contains(msg, "event: "+EventOverviewUpdated) || !strings.Contains(msg, `"employees":3`) {
		t.Errorf("overview message = %q", msg)
	}
}

func TestThrottledChangeGetsTrailingOverview(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	var version atomic.Int64
	b.SetOverview(func() any { return map[string]int64{"version": version.Load()} })
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	version.Store(1)
	b.PublishChange(Event{Type: EventDatasetReloaded})
	_ = next(t, ch) // dataset.reloaded
	if msg := next(t, ch); !strings.Contains(msg, `"version":1`) {
		t.Fatalf("first overview = %q", msg)
	}

	version.Store(2)
	b.PublishChange(Event{Type: EventStrategyAccepted})
	if msg := next(t, ch); !strings.Contains(msg, "event: "+EventStrategyAccepted) {
		t.Fatalf("change message = %q", msg)
	}
	msg := next(t, ch)
	if !strings.Contains(msg, "event: "+EventOverviewUpdated) || !strings.Contains(msg, `"version":2`) {
		t.Errorf("trailing overview = %q", msg)
	}
}

func TestSubscribeReceivesLatestOverview(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	b.SetOverview(func() any { return map[string]string{"title": "Strategic Goals"} })

	first := b.Subscribe()
	b.PublishChange(Event{Type: EventDatasetReloaded})
	_ = next(t, first)
	_ = next(t, first)
	b.Unsubscribe(first)

	late := b.Subscribe()
	defer b.Unsubscribe(late)
	msg := next(t, late)
	if !strings.Contains(msg, "event: "+EventOverviewUpdated) || !strings.Contains(msg, "Strategic Goals") {
		t.Errorf("replayed message = %q", msg)
	}
}
