// Package sse implements a Server-Sent Events broker that tells connected
// clients when documents change and when generated files are rewritten.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/decisionlog/internal/generator"
)

// Event types sent to clients.
const (
	EventDocumentsChanged   = "documents.changed"
	EventRegenerated        = "regenerated"
	EventRegenerationFailed = "regeneration.failed"
	EventRelationsUpdated   = "relations.updated"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// regenerated is the payload of a regenerated event.
type regenerated struct {
	ADRs       int      `json:"adrs"`
	Ideas      int      `json:"ideas"`
	Artifacts  []string `json:"artifacts"`
	DurationMS int64    `json:"duration_ms"`
}

// heartbeatInterval is how often ServeHTTP writes a comment line to keep
// idle connections open through proxies.
var heartbeatInterval = 15 * time.Second

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop owns the client set, the last regenerated message and
// the relations throttle timestamp; public methods talk to it over channels.
// New subscribers first receive the last regenerated message, if any.
type Broker struct {
	relationsMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	reportCh      chan regenerated
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. relationsThrottle is the minimum
// interval between two relations.updated events.
func NewBroker(relationsThrottle time.Duration) *Broker {
	if relationsThrottle <= 0 {
		relationsThrottle = 2 * time.Second
	}

	b := &Broker{
		relationsMin:  relationsThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		reportCh:      make(chan regenerated, 256),
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
	var lastRelations time.Time
	var lastReport []byte

	broadcast := func(event Event) []byte {
		raw, err := encode(event)
		if err != nil {
			return nil
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than block the loop.
			}
		}
		return raw
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
			if lastReport != nil {
				ch <- lastReport
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case r := <-b.reportCh:
			if raw := broadcast(Event{Type: EventRegenerated, Data: r}); raw != nil {
				lastReport = raw
			}

			now := time.Now()
			if now.Sub(lastRelations) >= b.relationsMin {
				lastRelations = now
				broadcast(Event{Type: EventRelationsUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
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

// PublishChanges announces a burst of changed document files.
func (b *Broker) PublishChanges(paths []string) {
	b.Publish(Event{Type: EventDocumentsChanged, Data: map[string][]string{"paths": paths}})
}

// PublishFailure announces a failed regeneration pass.
func (b *Broker) PublishFailure(err error) {
	b.Publish(Event{Type: EventRegenerationFailed, Data: map[string]string{"error": err.Error()}})
}

// PublishReport announces a finished regeneration pass, followed by a
// throttled relations.updated event.
func (b *Broker) PublishReport(report *generator.Report) {
	if b.closed.Load() || report == nil {
		return
	}
	r := regenerated{
		ADRs:       report.ADRs,
		Ideas:      report.Ideas,
		Artifacts:  make([]string, 0, len(report.Artifacts)),
		DurationMS: report.Duration.Milliseconds(),
	}
	for _, a := range report.Artifacts {
		r.Artifacts = append(r.Artifacts, a.Path)
	}
	select {
	case b.reportCh <- r:
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

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
