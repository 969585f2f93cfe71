// Package live pushes database change notifications to admin pages over
// Server-Sent Events so lists can refetch without polling.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

// Hub fans change events out to subscribed clients. Slow clients miss
// events rather than blocking the others.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	broadcast chan domain.ChangeEvent
	keepAlive time.Duration
	log       *logger.Logger

	// done is closed when Run returns; open streams end with it.
	done     chan struct{}
	stopOnce sync.Once
}

type client struct {
	ch     chan domain.ChangeEvent
	tables map[string]bool
}

func (c *client) wants(table string) bool {
	return len(c.tables) == 0 || table == "*" || c.tables[table]
}

// NewHub creates a Hub. Call Run to start dispatching.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan domain.ChangeEvent, 256),
		keepAlive: 25 * time.Second,
		log:       logger.Named("live"),
		done:      make(chan struct{}),
	}
}

// Run dispatches published events until ctx is done, then ends every
// open stream.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if !c.wants(ev.Table) {
					continue
				}
				select {
				case c.ch <- ev:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues ev for delivery. It reports false when the queue is full.
func (h *Hub) Publish(ev domain.ChangeEvent) bool {
	select {
	case h.broadcast <- ev:
		return true
	default:
		h.log.Warn("change event dropped", "table", ev.Table)
		return false
	}
}

// Subscribe registers a client for tables (all tables when empty). The
// returned func unregisters it.
func (h *Hub) Subscribe(tables ...string) (<-chan domain.ChangeEvent, func()) {
	c := &client{ch: make(chan domain.ChangeEvent, 64), tables: map[string]bool{}}
	for _, t := range tables {
		if t = strings.TrimSpace(t); t != "" {
			c.tables[t] = true
		}
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return c.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
		})
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP streams events as SSE. ?table=a,b limits the stream to those
// tables. The client is dropped as soon as the request context ends or
// the hub stops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	var tables []string
	if t := r.URL.Query().Get("table"); t != "" {
		tables = strings.Split(t, ",")
	}
	events, unsubscribe := h.Subscribe(tables...)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case ev := <-events:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("event: change\ndata: " + string(data) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
