// Package notify maintains the set of connected websocket observers and fans
// change events out to them. Delivery is best-effort: ordered per observer,
// no cross-observer ordering, no retry, and a failing observer never blocks
// the rest.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"checkin/internal/metrics"
	"checkin/internal/queue"
)

// Change is the wire frame pushed to observers.
type Change struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// observerConn is the slice of *websocket.Conn the hub needs; tests swap in
// fakes.
type observerConn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

type observer struct {
	id   string
	conn observerConn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// close signals the pumps; the send channel itself is never closed because
// fanout may still be holding a reference to it.
func (o *observer) close() {
	o.once.Do(func() {
		close(o.done)
		o.conn.Close()
	})
}

// Hub routes published change events through a queue to every connected
// observer. The queue bounds the request path: Publish never waits on a
// socket write.
type Hub struct {
	mu        sync.RWMutex
	observers map[string]*observer

	queue          queue.Queue
	publishTimeout time.Duration
	upgrader       websocket.Upgrader
	logger         *logrus.Logger
}

// NewHub creates a hub publishing to q. publishTimeout bounds how long a
// Publish may wait for queue space before the frame is dropped.
func NewHub(q queue.Queue, publishTimeout time.Duration, logger *logrus.Logger) *Hub {
	if publishTimeout <= 0 {
		publishTimeout = 2 * time.Second
	}
	return &Hub{
		observers:      make(map[string]*observer),
		queue:          q,
		publishTimeout: publishTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Publish serializes the change event and hands it to the queue,
// fire-and-forget. Failures are logged, never returned to the caller.
func (h *Hub) Publish(eventType string, data any) {
	frame, err := json.Marshal(Change{Type: eventType, Data: data})
	if err != nil {
		h.logger.WithError(err).WithField("event", eventType).Error("change event marshal failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.publishTimeout)
	defer cancel()
	if err := h.queue.Publish(ctx, queue.Message{Kind: eventType, Body: frame}); err != nil {
		metrics.BroadcastsDropped.Inc()
		h.logger.WithError(err).WithField("event", eventType).Warn("change event publish failed")
		return
	}
	metrics.BroadcastsPublished.Inc()
}

// Run consumes the queue and fans each frame out until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	messages, err := h.queue.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range messages {
		h.fanout(msg.Body)
	}
	return ctx.Err()
}

// fanout delivers one frame to every observer's send queue. A full queue
// means the observer is slow; the frame is skipped for it and the observer
// stays registered until its connection signals closed.
func (h *Hub) fanout(frame []byte) {
	h.mu.RLock()
	targets := make([]*observer, 0, len(h.observers))
	for _, o := range h.observers {
		targets = append(targets, o)
	}
	h.mu.RUnlock()

	for _, o := range targets {
		select {
		case <-o.done:
			continue
		default:
		}
		select {
		case o.send <- frame:
		default:
			metrics.BroadcastsDropped.Inc()
		}
	}
}

// ObserverCount reports the currently connected observers.
func (h *Hub) ObserverCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

func (h *Hub) add(o *observer) {
	h.mu.Lock()
	h.observers[o.id] = o
	h.mu.Unlock()
	metrics.ObserversConnected.Inc()
	h.logger.WithField("observer", o.id).Debug("observer connected")
}

func (h *Hub) remove(o *observer) {
	h.mu.Lock()
	_, present := h.observers[o.id]
	delete(h.observers, o.id)
	h.mu.Unlock()
	if present {
		metrics.ObserversConnected.Dec()
		h.logger.WithField("observer", o.id).Debug("observer disconnected")
	}
	o.close()
}

// ServeWS upgrades an HTTP request to a websocket observer connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.attach(conn)
}

// attach registers the connection and starts its pumps.
func (h *Hub) attach(conn observerConn) *observer {
	o := &observer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}
	h.add(o)
	go h.writePump(o)
	go h.readPump(o)
	return o
}

// writePump drains the observer's send queue onto the socket. The first
// write failure retires the observer.
func (h *Hub) writePump(o *observer) {
	for {
		select {
		case <-o.done:
			return
		case frame := <-o.send:
			if err := o.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				metrics.BroadcastsDropped.Inc()
				h.remove(o)
				return
			}
		}
	}
}

// readPump discards inbound frames; its job is noticing the close signal.
func (h *Hub) readPump(o *observer) {
	for {
		if _, _, err := o.conn.ReadMessage(); err != nil {
			h.remove(o)
			return
		}
	}
}
