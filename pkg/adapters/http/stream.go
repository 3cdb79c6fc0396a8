package http

import (
	"log/slog"
	"sync"

	"github.com/techwithparamesh/agentflow/internal/logging"
)

// StreamManager fans flow diffs out to SSE subscribers, keyed by flow id.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.OrNop(logger),
	}
}

// Subscribe registers a buffered channel for flowID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(flowID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[flowID]; !ok {
		sm.subscribers[flowID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[flowID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[flowID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, flowID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of flowID without blocking.
// Slow subscribers miss the message.
func (sm *StreamManager) Broadcast(flowID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[flowID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE client buffer full, dropping message", "flow_id", flowID)
		}
	}
}

// Subscribers returns how many channels listen on flowID.
func (sm *StreamManager) Subscribers(flowID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[flowID])
}
