package browser

import (
	"sync"
	"sync/atomic"
	"time"
)

// Script is one evaluated script queued for a page.
type Script struct {
	ID     int64
	At     time.Time
	Source string
}

// Hub fans scripts out to a window's connected pages and keeps a small
// ring buffer so a reconnecting page can replay what it missed.
type Hub struct {
	nextID atomic.Int64

	mu    sync.Mutex
	ring  []Script
	start int
	size  int

	subs      map[int]chan Script
	nextSubID int
	closed    bool
}

func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 256
	}
	return &Hub{
		ring: make([]Script, capacity),
		subs: make(map[int]chan Script),
	}
}

// Publish queues source for every subscriber.
func (h *Hub) Publish(source string) int64 {
	id := h.nextID.Add(1)
	s := Script{ID: id, At: time.Now().UTC(), Source: source}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return id
	}
	h.pushLocked(s)
	for _, ch := range h.subs {
		// Don't let slow pages block the shell; they replay from the ring.
		select {
		case ch <- s:
		default:
		}
	}
	return id
}

// Subscribe returns a channel of new scripts and a cancel func.
func (h *Hub) Subscribe() (<-chan Script, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	ch := make(chan Script, 128)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// SnapshotSince returns buffered scripts with ID > lastID, oldest-first.
// If lastID is 0, the full ring buffer snapshot is returned.
func (h *Hub) SnapshotSince(lastID int64) []Script {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Script, 0, h.size)
	for i := 0; i < h.size; i++ {
		s := h.ring[(h.start+i)%len(h.ring)]
		if lastID == 0 || s.ID > lastID {
			out = append(out, s)
		}
	}
	return out
}

func (h *Hub) pushLocked(s Script) {
	capacity := len(h.ring)
	if h.size < capacity {
		h.ring[(h.start+h.size)%capacity] = s
		h.size++
		return
	}
	// Overwrite oldest.
	h.ring[h.start] = s
	h.start = (h.start + 1) % capacity
}
