package notify

import (
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	// hubSessions gauges the number of currently attached sessions.
	hubSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_sessions",
			Help: "Current number of attached websocket sessions.",
		},
	)

	// hubDelivered counts events handed to a session's send buffer.
	hubDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_delivered_total",
			Help: "Total events delivered to session buffers.",
		},
		[]string{"type"},
	)

	// hubDropped counts events dropped because a session buffer was full.
	hubDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_dropped_total",
			Help: "Total events dropped due to slow or dead sessions.",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(hubSessions, hubDelivered, hubDropped)
}

// Hub is a concurrent-safe multimap from user id to live sessions. One user
// may hold many sessions (phone, laptop, second tab); delivering to the user
// pushes to all of them so every device converges on the same state.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

// NewHub returns an empty session registry.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Session]struct{})}
}

// Register attaches a session under its user id.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	set := h.sessions[s.userID]
	if set == nil {
		set = make(map[*Session]struct{})
		h.sessions[s.userID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	hubSessions.Inc()
}

// Unregister detaches a session and closes its send buffer. Safe to call
// more than once per session.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	set := h.sessions[s.userID]
	if _, ok := set[s]; !ok {
		h.mu.Unlock()
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.userID)
	}
	h.mu.Unlock()
	s.close()
	hubSessions.Dec()
}

// Deliver pushes an event to every session of userID. The send is
// non-blocking: a session whose buffer is full is dropped and detached
// rather than stalling the caller. Zero attached sessions is a no-op.
// Deliver never returns an error into the command path.
func (h *Hub) Deliver(userID string, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("type", e.Type).Msg("notify: marshal event")
		return
	}

	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions[userID]))
	for s := range h.sessions[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		select {
		case <-s.done:
			hubDropped.WithLabelValues(e.Type).Inc()
		case s.send <- payload:
			hubDelivered.WithLabelValues(e.Type).Inc()
		default:
			// Buffer full: the session is too slow to keep up. Detach it
			// rather than stall the command path.
			hubDropped.WithLabelValues(e.Type).Inc()
			h.Unregister(s)
		}
	}
}

// SessionCount returns the number of sessions attached for userID.
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}
