package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/prodigypm/orchestrator/internal/workflow"
)

// subscriberBuffer is the per-subscriber event queue depth. Slow readers
// drop events rather than stall workflow runs.
const subscriberBuffer = 32

// StepEvent is one message on the progress stream.
type StepEvent struct {
	WorkflowID string              `json:"workflow_id"`
	Step       workflow.StepResult `json:"step"`
	Time       time.Time           `json:"time"`
}

// Hub fans workflow step events out to websocket subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan StepEvent]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan StepEvent]struct{})}
}

// Publish delivers a step event to every subscriber. Non-blocking; a full
// subscriber queue drops the event for that subscriber only.
func (h *Hub) Publish(workflowID string, step workflow.StepResult) {
	ev := StepEvent{WorkflowID: workflowID, Step: step, Time: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) subscribe() chan StepEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan StepEvent, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

func (h *Hub) unsubscribe(ch chan StepEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Close shuts down all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// handleStream upgrades to a websocket and forwards step events until the
// client disconnects or the hub closes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
