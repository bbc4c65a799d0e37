// Package net serves boards to viewers on the local network: a websocket hub
// that streams snapshots and accepts pointer gestures, mDNS advertisement and
// local address discovery.
package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ScrapBoard/internal/geom"
	"ScrapBoard/internal/gesture"
	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/state"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	MessageSnapshot  = "snapshot"
	MessageTransient = "transient"
	MessagePointer   = "pointer"
	MessageError     = "error"

	sendBuffer = 32
	writeWait  = 10 * time.Second
)

// Message is the envelope for everything exchanged with a viewer.
type Message struct {
	Type string `json:"type"`

	// snapshot
	Document *state.Document `json:"document,omitempty"`

	// transient
	Scrap        string      `json:"scrap,omitempty"`
	Busy         bool        `json:"busy,omitempty"`
	Displacement *geom.Point `json:"displacement,omitempty"`

	// pointer
	Kind   string  `json:"kind,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Target string  `json:"target,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// Event converts a pointer message into a gesture event.
func (m Message) Event() (gesture.Event, error) {
	kind, err := gesture.ParseKind(m.Kind)
	if err != nil {
		return gesture.Event{}, err
	}
	ev := gesture.Event{Kind: kind, Pointer: geom.Pt(m.X, m.Y)}
	if m.Target != "" {
		if ev.Target, err = uuid.Parse(m.Target); err != nil {
			return gesture.Event{}, fmt.Errorf("bad pointer target: %w", err)
		}
	}
	return ev, nil
}

type client struct {
	conn     *websocket.Conn
	send     chan []byte
	detector *gesture.Detector
}

// Hub tracks connected viewers. Every viewer receives each snapshot and
// transient update; pointer messages from a viewer drive its own gesture
// detector, whose commands go to sink.
type Hub struct {
	sink       gesture.Sink
	docs       gesture.DocumentSource
	transients *gesture.Transients
	upgrader   websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]bool
}

func NewHub(sink gesture.Sink, docs gesture.DocumentSource, ts *gesture.Transients) *Hub {
	h := &Hub{
		sink:       sink,
		docs:       docs,
		transients: ts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]bool),
	}
	ts.OnChange = h.BroadcastTransient
	return h
}

// Clients is the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	logging.Logger().Info("[HUB] viewer connected", "addr", c.conn.RemoteAddr().String())
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	logging.Logger().Info("[HUB] viewer disconnected", "addr", c.conn.RemoteAddr().String())
}

func (h *Hub) broadcast(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		logging.Logger().Error("[HUB] unable to encode message", "type", m.Type, "err", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logging.Logger().Warn("[HUB] dropping slow viewer", "addr", c.conn.RemoteAddr().String())
		h.remove(c)
		c.conn.Close()
	}
}

// BroadcastSnapshot sends doc to every viewer.
func (h *Hub) BroadcastSnapshot(doc state.Document) {
	h.broadcast(Message{Type: MessageSnapshot, Document: &doc})
}

// BroadcastTransient sends the live gesture state of one scrap.
func (h *Hub) BroadcastTransient(id uuid.UUID, t gesture.Transient) {
	d := t.Displacement
	h.broadcast(Message{Type: MessageTransient, Scrap: id.String(), Busy: t.Busy, Displacement: &d})
}

// Run forwards snapshots to the viewers until ctx is done or the channel
// closes.
func (h *Hub) Run(ctx context.Context, snapshots <-chan state.Document) {
	for {
		select {
		case <-ctx.Done():
			return
		case doc, ok := <-snapshots:
			if !ok {
				return
			}
			h.BroadcastSnapshot(doc)
		}
	}
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.remove(c)
		c.conn.Close()
	}
}

// ServeHTTP upgrades the request and serves one viewer until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("[HUB] upgrade failed", "addr", r.RemoteAddr, "err", err)
		return
	}

	c := &client{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		detector: gesture.NewDetector(h.sink, h.docs, h.transients),
	}
	if doc, ok := h.docs.Document(); ok {
		if data, err := json.Marshal(Message{Type: MessageSnapshot, Document: &doc}); err == nil {
			c.send <- data
		}
	}
	h.add(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		c.detector.Close()
		h.remove(c)
		c.conn.Close()
	}()

	for {
		var m Message
		if err := c.conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Logger().Warn("[HUB] viewer read failed", "addr", c.conn.RemoteAddr().String(), "err", err)
			}
			return
		}
		if m.Type != MessagePointer {
			logging.Logger().Debug("[HUB] ignoring message", "type", m.Type)
			continue
		}
		ev, err := m.Event()
		if err == nil {
			err = c.detector.Handle(ev)
		}
		if err != nil {
			h.reply(c, Message{Type: MessageError, Error: err.Error()})
		}
	}
}

func (h *Hub) reply(c *client, m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logging.Logger().Warn("[HUB] viewer write failed", "addr", c.conn.RemoteAddr().String(), "err", err)
			c.conn.Close()
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
