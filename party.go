package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "create_room", "join_room", "leave_room", "start_game", "send_score", "chat"
	Room     string `json:"room,omitempty"`     // create_room / join_room
	Username string `json:"username,omitempty"` // create_room / join_room
	Content  string `json:"content,omitempty"`  // chat
	ID       int64  `json:"id,omitempty"`       // chat, client-side counter
	Score    int    `json:"score,omitempty"`    // send_score
	Trivia   bool   `json:"trivia,omitempty"`   // start_game
	Whack    bool   `json:"whack,omitempty"`    // start_game
	Memory   bool   `json:"memory,omitempty"`   // start_game
	Snake    bool   `json:"snake,omitempty"`    // start_game
}

// AckMessage answers a create_room/join_room/start_game request. Sent to
// the requesting connection only.
type AckMessage struct {
	Type   string `json:"type"` // "ack"
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// PlayerListMessage is the room-scoped presence snapshot.
type PlayerListMessage struct {
	Type    string       `json:"type"` // "update_players"
	Players []PlayerInfo `json:"players"`
}

type SetRoundMessage struct {
	Type  string `json:"type"` // "set_round"
	Round string `json:"round"`
}

type ScoreboardMessage struct {
	Type    string `json:"type"` // "scoreboard"
	Visible bool   `json:"visible"`
}

type CountdownMessage struct {
	Type    string `json:"type"` // "countdown"
	Visible bool   `json:"visible"`
}

// StartRoundMessage signals the start of a round's active phase. Trivia
// rounds carry either a question or an error flag, never both.
type StartRoundMessage struct {
	Type       string    `json:"type"` // "start_round"
	Round      string    `json:"round"`
	DurationMs int64     `json:"duration_ms"`
	Question   *Question `json:"question,omitempty"`
	Error      string    `json:"error,omitempty"`
}

type EndGameMessage struct {
	Type string `json:"type"` // "end_game"
}

type ChatLogMessage struct {
	Type     string        `json:"type"` // "chat_log"
	Messages []ChatMessage `json:"messages"`
}

func newUpgrader(cfg *Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if cfg.allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == cfg.allowedOrigin
		},
	}
}

// serveWS accepts a websocket session and runs its pumps. Each connection
// gets an opaque server-assigned identity.
func serveWS(cfg *Config, reg *Registry) httprouter.Handle {
	upgrader := newUpgrader(cfg)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "PARTY: upgrade error from %s: %v", realIP(r), err)
			return
		}

		p := newPlayer(uuid.NewString())
		logf(cfg, "PARTY: connection %s from %s", p.ID, realIP(r))

		go writePump(conn, p)
		readPump(cfg, reg, conn, p)
	}
}

func readPump(cfg *Config, reg *Registry, conn *websocket.Conn, p *Player) {
	defer func() {
		reg.Leave(p)
		close(p.send)
		_ = conn.Close()
		logf(cfg, "PARTY: connection %s closed", p.ID)
	}()

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "create_room":
			_, err := reg.Create(msg.Room, p, msg.Username)
			p.enqueue(ack(err))

		case "join_room":
			_, err := reg.Join(msg.Room, p, msg.Username)
			p.enqueue(ack(err))

		case "leave_room":
			reg.Leave(p)

		case "start_game":
			err := reg.StartGame(p.RoomName, startFlags{
				Trivia: msg.Trivia,
				Whack:  msg.Whack,
				Memory: msg.Memory,
				Snake:  msg.Snake,
			})
			if err != nil {
				p.enqueue(ack(err))
			}

		case "send_score":
			reg.AddScore(p, msg.Score)

		case "chat":
			if room, ok := reg.Get(p.RoomName); ok {
				room.PostMessage(p, msg.Content, msg.ID)
			}

		default:
			// ignore unknown types
		}
	}
}

func ack(err error) AckMessage {
	if err == nil {
		return AckMessage{Type: "ack", Status: "ok"}
	}
	reason := "request failed"
	switch {
	case errors.Is(err, ErrRoomExists):
		reason = "room already exists"
	case errors.Is(err, ErrRoomNotFound):
		reason = "room not found"
	case errors.Is(err, ErrGameRunning):
		reason = "game already running"
	}
	return AckMessage{Type: "ack", Status: "bad", Reason: reason}
}

func writePump(conn *websocket.Conn, p *Player) {
	defer conn.Close()

	for msg := range p.send {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// qrHandler generates a PNG QR code for the current room URL using
// go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		room := ps.ByName("room")
		if room == "" {
			http.Error(w, "missing room name", http.StatusBadRequest)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at /.../:room/qr; strip trailing "/qr" to get the room URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")

		url := scheme + "://" + r.Host + path

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)

		logf(cfg, "SERVE: QR code (%s) for %q to %s in %s",
			humanReadableSize(int64(len(png))),
			room,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// registerPartyGame sets up routes so that:
//   - /ws                → websocket session endpoint
//   - $path/:room        → HTML client shell
//   - $path/:room/qr     → PNG QR code for that room URL
func registerPartyGame(cfg *Config, path string, mux *httprouter.Router, reg *Registry) {
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, reg))

	mux.GET(cfg.prefix+path+"/:room", serveRoomPage(cfg))

	mux.GET(cfg.prefix+path+"/:room/qr", qrHandler(cfg))
}
