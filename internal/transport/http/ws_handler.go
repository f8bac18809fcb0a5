package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"quizboard-service/internal/app"
	"quizboard-service/internal/auth"
	"quizboard-service/internal/domain"
)

// WSHandler upgrades connections and dispatches the game event protocol.
type WSHandler struct {
	service  *app.GameService
	guard    *auth.Guard
	sessions *auth.Service
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, guard *auth.Guard, sessions *auth.Service, hub *Hub) *WSHandler {
	return &WSHandler{
		service:  service,
		guard:    guard,
		sessions: sessions,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq"`
	Payload json.RawMessage `json:"payload"`
}

// ackMessage answers one inbound request. Fields beyond OK are set per event.
type ackMessage struct {
	Seq      int64       `json:"seq"`
	OK       bool        `json:"ok"`
	Error    string      `json:"error,omitempty"`
	Code     domain.Code `json:"code,omitempty"`
	GameID   string      `json:"gameId,omitempty"`
	PlayerID string      `json:"playerId,omitempty"`
}

type sessionPayload struct {
	Token string      `json:"token"`
	Role  domain.Role `json:"role"`
}

type gamePayload struct {
	GameID string `json:"gameId"`
}

type selectPayload struct {
	GameID string `json:"gameId"`
	QID    string `json:"qid"`
}

type joinPayload struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"`
}

type answerPayload struct {
	GameID string `json:"gameId"`
	QID    string `json:"qid"`
	Choice string `json:"choice"`
}

// ServeWS runs one connection: resolve (or issue) the caller's token, join
// the rooms its identity grants, then loop over inbound events.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()

	var ident domain.Identity
	if token != "" {
		ident, err = h.guard.Identify(ctx, token)
		if err != nil {
			token = ""
		}
	}
	if token == "" {
		token, err = h.sessions.IssueAnonymous(ctx)
		if err != nil {
			log.Printf("ws session issue failed: %v", err)
			return
		}
		ident = domain.Identity{}
	}

	c := newClient()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				break
			}
		}
		// keep draining after a write error so blocking ack sends in the
		// read loop can never deadlock
		for range c.send {
		}
	}()
	defer func() {
		h.hub.leave(c)
		close(c.send)
		<-writerDone
	}()

	// Reconnecting callers land back in their rooms; missed events are not
	// replayed, clients refetch snapshots instead.
	if ident.Role == domain.RoleHost && ident.HostGameID != "" {
		if _, err := h.service.GameForHost(ident.HostGameID, ident.HostID); err == nil {
			h.hub.joinHost(ident.HostGameID, c)
		}
	}
	if ident.Role == domain.RolePlayer && ident.GameID != "" {
		h.hub.joinPlayer(ident.GameID, ident.PlayerID, c)
	}

	c.send <- outboundMessage{Type: "session", Payload: sessionPayload{Token: token, Role: ident.Role}}

	// Acks are sent blocking: every request gets a synchronous response even
	// when the buffer is saturated with pushes. Only hub fan-out may drop.
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		c.send <- h.dispatch(ctx, token, c, inbound)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, token string, c *client, inbound inboundMessage) outboundMessage {
	ack := func(msg ackMessage) outboundMessage {
		msg.Seq = inbound.Seq
		return outboundMessage{Type: "ack", Payload: msg}
	}
	fail := func(err error) outboundMessage {
		return ack(ackMessage{OK: false, Error: err.Error(), Code: domain.CodeOf(err)})
	}

	switch inbound.Type {
	case "host:createGame":
		ident, err := h.guard.Host(ctx, token)
		if err != nil {
			return fail(err)
		}
		game, err := h.service.CreateGame(ctx, ident.HostID)
		if err != nil {
			return fail(err)
		}
		// best-effort session pointer
		if err := h.sessions.BindHostGame(ctx, token, ident, game.ID()); err != nil {
			log.Printf("bind host game: %v", err)
		}
		h.hub.joinHost(game.ID(), c)
		return ack(ackMessage{OK: true, GameID: game.ID()})

	case "host:joinGame":
		var payload gamePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail(domain.ErrGameNotFound)
		}
		ident, err := h.guard.Host(ctx, token)
		if err != nil {
			return fail(err)
		}
		game, err := h.service.GameForHost(payload.GameID, ident.HostID)
		if err != nil {
			return fail(err)
		}
		if err := h.sessions.BindHostGame(ctx, token, ident, game.ID()); err != nil {
			log.Printf("bind host game: %v", err)
		}
		h.hub.joinHost(game.ID(), c)
		return ack(ackMessage{OK: true})

	case "host:selectQuestion":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail(domain.ErrCellNotFound)
		}
		ident, err := h.guard.Host(ctx, token)
		if err != nil {
			return fail(err)
		}
		if err := h.service.SelectQuestion(ctx, payload.GameID, payload.QID, ident.HostID); err != nil {
			return fail(err)
		}
		return ack(ackMessage{OK: true})

	case "player:join":
		var payload joinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail(domain.ErrNameRequired)
		}
		if ident, err := h.guard.Identify(ctx, token); err == nil && ident.Role == domain.RoleHost {
			return fail(domain.ErrHostCannotJoin)
		}
		player, err := h.service.RegisterPlayer(ctx, payload.GameID, payload.Name)
		if err != nil {
			return fail(err)
		}
		if _, err := h.sessions.BindPlayer(ctx, token, player.ID, payload.GameID, player.Name); err != nil {
			return fail(err)
		}
		h.hub.joinPlayer(payload.GameID, player.ID, c)
		return ack(ackMessage{OK: true, PlayerID: player.ID})

	case "player:answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail(domain.ErrInvalidChoice)
		}
		ident, err := h.guard.Player(ctx, token)
		if err != nil {
			return fail(err)
		}
		if ident.GameID != payload.GameID {
			return fail(domain.ErrGameMismatch)
		}
		if _, err := h.service.SubmitAnswer(ctx, payload.GameID, payload.QID, payload.Choice, ident.PlayerID); err != nil {
			return fail(err)
		}
		return ack(ackMessage{OK: true})
	}

	return fail(errUnsupported)
}

var errUnsupported = errors.New("unsupported message type")
