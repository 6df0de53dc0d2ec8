package engine

import (
	"sync"

	"github.com/minaorangina/kings/protocol"
)

const defaultBacklog = 16

// hub fans events out to subscribers. Publishing never blocks: a
// subscriber that falls behind loses its oldest queued events.
type hub struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	backlog int
	closed  bool
}

func newHub(backlog int) *hub {
	if backlog <= 0 {
		backlog = defaultBacklog
	}
	return &hub{
		subs:    map[*Subscription]struct{}{},
		backlog: backlog,
	}
}

// subscribe registers a subscriber and queues initial for it alone
func (h *hub) subscribe(initial ...protocol.Event) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &Subscription{ch: make(chan protocol.Event, h.backlog), hub: h}
	if h.closed {
		s.closed = true
		close(s.ch)
		return s
	}
	h.subs[s] = struct{}{}
	for _, ev := range initial {
		s.push(ev)
	}
	return s
}

func (h *hub) publish(ev protocol.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		s.push(ev)
	}
}

func (h *hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return
	}
	delete(h.subs, s)
	s.closed = true
	close(s.ch)
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for s := range h.subs {
		s.closed = true
		close(s.ch)
	}
	h.subs = map[*Subscription]struct{}{}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// Subscription is a live feed of a game's events. The channel is closed
// when the subscription or the game is closed.
type Subscription struct {
	ch  chan protocol.Event
	hub *hub

	// guarded by hub.mu
	closed  bool
	dropped int
}

// Events returns the feed. The first event is a snapshot of the game.
func (s *Subscription) Events() <-chan protocol.Event {
	return s.ch
}

// Dropped counts the events lost because the subscriber fell behind
func (s *Subscription) Dropped() int {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	return s.dropped
}

func (s *Subscription) Close() {
	s.hub.remove(s)
}

// push must be called with hub.mu held
func (s *Subscription) push(ev protocol.Event) {
	for {
		select {
		case s.ch <- ev:
			return
		default:
		}

		select {
		case <-s.ch:
			s.dropped++
		default:
		}
	}
}
