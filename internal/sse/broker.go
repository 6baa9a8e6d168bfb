// Package sse implements a Server-Sent Events broker for real-time updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types published by the planner.
const (
	EventDatasetReloaded  = "dataset.reloaded"
	EventStrategyAccepted = "strategy.accepted"
	EventStrategyRejected = "strategy.rejected"
	EventOverviewUpdated  = "overview.updated"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// OverviewFunc returns the current gap overview.
type OverviewFunc func() any

// Broker manages SSE client connections and broadcasts planner events.
//
// Every change event is followed by an overview.updated event carrying the
// current gap overview, at most once per throttle interval. A change that
// lands inside the interval schedules one trailing overview so the last
// state always reaches clients. New subscribers get the latest overview
// first.
//
// A single event loop goroutine owns clients and throttle state; public
// methods talk to it through channels.
type Broker struct {
	overviewMin time.Duration
	overview    atomic.Pointer[OverviewFunc]

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker with the given overview throttle interval.
func NewBroker(overviewThrottle time.Duration) *Broker {
	if overviewThrottle <= 0 {
		overviewThrottle = 2 * time.Second
	}

	b := &Broker{
		overviewMin:   overviewThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastOverview time.Time
		lastMsg      []byte
		trailing     <-chan time.Time
	)

	broadcast := func(event Event) []byte {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return nil
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
		return raw
	}

	sendOverview := func() {
		lastOverview = time.Now()
		var data any = map[string]string{}
		if fn := b.overview.Load(); fn != nil {
			data = (*fn)()
		}
		if raw := broadcast(Event{Type: EventOverviewUpdated, Data: data}); raw != nil {
			lastMsg = raw
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			if lastMsg != nil {
				select {
				case ch <- lastMsg:
				default:
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case event := <-b.changeCh:
			broadcast(event)

			wait := b.overviewMin - time.Since(lastOverview)
			switch {
			case wait <= 0:
				sendOverview()
			case trailing == nil:
				trailing = time.After(wait)
			}

		case <-trailing:
			trailing = nil
			sendOverview()

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// SetOverview sets the payload source for overview.updated events. Until one
// is set the event carries an empty object. fn runs on the broker loop.
func (b *Broker) SetOverview(fn OverviewFunc) {
	b.overview.Store(&fn)
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishChange publishes an event that alters the gap overview, followed by
// a throttled overview.updated event with the current overview.
func (b *Broker) PublishChange(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- event:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
