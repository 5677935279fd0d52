// Package stream broadcasts simulation frames to websocket clients and
// collects their control messages.
package stream

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 64
)

// Control types accepted from clients.
const (
	ControlPause       = "pause"
	ControlResume      = "resume"
	ControlReset       = "reset"
	ControlTemperature = "temperature"
)

// Control is a JSON command sent by a client. Value carries the seed for a
// reset and the new temperature for a temperature change.
type Control struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

func (c Control) valid() bool {
	switch c.Type {
	case ControlPause, ControlResume, ControlReset:
		return true
	case ControlTemperature:
		return c.Value > 0
	default:
		return false
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type outbound struct {
	kind int
	data []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan outbound
}

// readPump forwards control messages to the hub until the connection
// fails.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("stream: read: %v", err)
			}
			return
		}
		var ctl Control
		if err := json.Unmarshal(message, &ctl); err != nil {
			log.Printf("stream: bad control message: %v", err)
			continue
		}
		if !ctl.valid() {
			log.Printf("stream: ignoring control %+v", ctl)
			continue
		}
		select {
		case c.hub.Controls <- ctl:
		default:
			log.Printf("stream: control queue full, dropping %s", ctl.Type)
		}
	}
}

// writePump is the only writer of the connection.
func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(message.kind, message.data); err != nil {
			log.Printf("stream: write error, closing connection: %v", err)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Controls receives validated client commands. The simulation loop
	// drains it; when it is full further commands are dropped.
	Controls chan Control
}

// NewHub creates a Hub. Call Run before serving connections.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		Controls:   make(chan Control, 16),
	}
}

// Run dispatches registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow clients skip frames.
				}
			}
		}
	}
}

// Broadcast queues a binary message for every client. It never blocks;
// when the queue is full the message is dropped and false is returned.
func (h *Hub) Broadcast(message []byte) bool {
	return h.queue(outbound{kind: websocket.BinaryMessage, data: message})
}

// BroadcastJSON encodes v and queues it as a text message.
func (h *Hub) BroadcastJSON(v any) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	return h.queue(outbound{kind: websocket.TextMessage, data: b}), nil
}

func (h *Hub) queue(m outbound) bool {
	select {
	case h.broadcast <- m:
		return true
	default:
		return false
	}
}

// ServeHTTP upgrades the request to a websocket connection and registers
// the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream: upgrade: %v", err)
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan outbound, sendBuffer)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// frameHeader is the size of the width and height prefix of a frame.
const frameHeader = 4

// ErrFrameSize is returned by EncodeFrame for frames the header cannot
// describe.
var ErrFrameSize = errors.New("stream: frame does not fit the uint16 header")

// EncodeFrame packs a display frame as little-endian uint16 width and
// height followed by the row-major cells.
func EncodeFrame(w, h int, cells []uint8) ([]byte, error) {
	if w < 0 || h < 0 || w > math.MaxUint16 || h > math.MaxUint16 || len(cells) != w*h {
		return nil, fmt.Errorf("%w: %dx%d with %d cells", ErrFrameSize, w, h, len(cells))
	}
	out := make([]byte, frameHeader+len(cells))
	binary.LittleEndian.PutUint16(out[0:], uint16(w))
	binary.LittleEndian.PutUint16(out[2:], uint16(h))
	copy(out[frameHeader:], cells)
	return out, nil
}

// DecodeFrame reverses EncodeFrame.
func DecodeFrame(b []byte) (w, h int, cells []uint8, ok bool) {
	if len(b) < frameHeader {
		return 0, 0, nil, false
	}
	w = int(binary.LittleEndian.Uint16(b[0:]))
	h = int(binary.LittleEndian.Uint16(b[2:]))
	cells = b[frameHeader:]
	return w, h, cells, len(cells) == w*h
}
