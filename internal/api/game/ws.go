package game

import (
	"context"
	"crash_backend/internal/bus"
	"crash_backend/internal/converter"
	"crash_backend/internal/model"
	"crash_backend/internal/service"
	"crash_backend/pkg/token"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/coder/websocket"
)

const clientSendBuffer = 64

type wsClient struct {
	send   chan []byte
	userID int // 0 when the stream is anonymous
}

// Hub fans bus events out to websocket clients. Each client gets a buffered
// channel; a client too slow to drain it loses frames rather than stalling
// the engine's emission path.
type Hub struct {
	serv      service.GameService
	jwtSecret []byte

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func NewHub(b *bus.Bus, serv service.GameService, jwtSecret []byte) *Hub {
	h := &Hub{
		serv:      serv,
		jwtSecret: jwtSecret,
		clients:   make(map[*wsClient]struct{}),
	}
	b.SubscribeAll(h.broadcast)
	return h
}

func (h *Hub) broadcast(event model.Event) {
	data, err := json.Marshal(converter.ToEventEnvelope(event))
	if err != nil {
		log.Printf("ws hub: marshal event %s: %v", event.Kind(), err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default: // slow client, drop the frame
		}
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Stream upgrades the connection and pushes every engine event to it.
// A valid ?token= ties the stream to a player; that player's wager is
// dropped when the stream closes.
func (h *Hub) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // cross-origin is handled by the cors middleware
	})
	if err != nil {
		return
	}
	defer conn.CloseNow()

	client := &wsClient{send: make(chan []byte, clientSendBuffer)}
	if tokenStr := r.URL.Query().Get("token"); tokenStr != "" {
		claims, err := token.VerifyToken(tokenStr, h.jwtSecret)
		if err != nil {
			conn.Close(websocket.StatusPolicyViolation, "invalid token")
			return
		}
		if id, err := strconv.Atoi(claims.ID); err == nil {
			client.userID = id
		}
	}

	h.add(client)
	defer func() {
		h.remove(client)
		if client.userID != 0 {
			h.serv.Disconnect(client.userID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain inbound frames to notice the peer going away; the stream itself
	// is one-way.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-client.send:
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}
