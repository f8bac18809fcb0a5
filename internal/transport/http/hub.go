package http

import (
	"sync"
)

// outboundMessage is the push envelope written to sockets.
type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub implements app.Broadcaster over live websocket connections. Each game
// has two disjoint rooms: the owning host's connections and all joined
// players' connections. Delivery is fire-and-forget; a slow or disconnected
// recipient is skipped, never queued for.
type Hub struct {
	mu       sync.RWMutex
	hosts    map[string]map[*client]struct{}
	players  map[string]map[*client]struct{}
	byPlayer map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		hosts:    make(map[string]map[*client]struct{}),
		players:  make(map[string]map[*client]struct{}),
		byPlayer: make(map[string]map[*client]struct{}),
	}
}

func (h *Hub) ToHost(gameID, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fan(h.hosts[gameID], event, payload)
}

func (h *Hub) ToPlayers(gameID, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fan(h.players[gameID], event, payload)
}

func (h *Hub) ToPlayer(playerID, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fan(h.byPlayer[playerID], event, payload)
}

func fan(room map[*client]struct{}, event string, payload any) {
	msg := outboundMessage{Type: event, Payload: payload}
	for c := range room {
		c.trySend(msg)
	}
}

// joinHost adds c to the host room for gameID. A host connection may re-bind
// to another of its games; the old membership is dropped first.
func (h *Hub) joinHost(gameID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.hostGameID != "" {
		h.remove(h.hosts, c.hostGameID, c)
	}
	c.hostGameID = gameID
	h.add(h.hosts, gameID, c)
}

// joinPlayer adds c to the player room for gameID. A connection may re-join
// under a fresh player id; the old memberships are dropped first so no stale
// binding outlives the rebind.
func (h *Hub) joinPlayer(gameID, playerID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.playerGameID != "" {
		h.remove(h.players, c.playerGameID, c)
	}
	if c.playerID != "" {
		h.remove(h.byPlayer, c.playerID, c)
	}
	c.playerGameID = gameID
	c.playerID = playerID
	h.add(h.players, gameID, c)
	h.add(h.byPlayer, playerID, c)
}

// leave drops all of c's room memberships. Game state is untouched;
// disconnection never cancels in-flight questions or deletes players.
func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.hostGameID != "" {
		h.remove(h.hosts, c.hostGameID, c)
	}
	if c.playerGameID != "" {
		h.remove(h.players, c.playerGameID, c)
	}
	if c.playerID != "" {
		h.remove(h.byPlayer, c.playerID, c)
	}
}

func (h *Hub) add(rooms map[string]map[*client]struct{}, key string, c *client) {
	room, ok := rooms[key]
	if !ok {
		room = make(map[*client]struct{})
		rooms[key] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) remove(rooms map[string]map[*client]struct{}, key string, c *client) {
	room, ok := rooms[key]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(rooms, key)
	}
}

// client is one websocket connection with its room bindings. All writes go
// through the send channel so a single writer goroutine owns the socket.
type client struct {
	send chan outboundMessage

	hostGameID   string
	playerGameID string
	playerID     string
}

func newClient() *client {
	return &client{send: make(chan outboundMessage, 16)}
}

// trySend drops the message if the client's buffer is full. At-most-once
// per connected socket, no queuing for the disconnected.
func (c *client) trySend(msg outboundMessage) {
	select {
	case c.send <- msg:
	default:
	}
}
