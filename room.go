package main

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrGameRunning  = errors.New("a game is already running in this room")
)

const (
	systemUsername = "partyrounds"
	welcomeMessage = "Use this space to say hi to your opponents! Or talk trash and throw them off their game..."
)

// Room is one named session: a member set, a chat log, and at most one
// running game. All fields behind mu; mutations arrive from multiple
// connection handlers concurrently.
type Room struct {
	Name string

	mu       sync.Mutex
	members  map[string]*Player
	messages []ChatMessage
	host     string
	cancel   context.CancelFunc // non-nil while a game run is active
}

func newRoom(name, host string) *Room {
	return &Room{
		Name:    name,
		members: make(map[string]*Player),
		host:    host,
		messages: []ChatMessage{{
			Username: systemUsername,
			Content:  welcomeMessage,
			ID:       0,
		}},
	}
}

// multicastLocked delivers msg to every current member. Callers hold r.mu,
// so the member set cannot change mid-iteration.
func (r *Room) multicastLocked(msg any) {
	for _, p := range r.members {
		p.enqueue(msg)
	}
}

func (r *Room) multicast(msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.multicastLocked(msg)
}

func (r *Room) snapshotLocked() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(r.members))
	for _, p := range r.members {
		players = append(players, p.info())
	}
	return players
}

// publishPresence multicasts the current roster with live scores. Pure
// projection of the member set; called after every membership or
// score-visible change.
func (r *Room) publishPresence() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.multicastLocked(PlayerListMessage{
		Type:    "update_players",
		Players: r.snapshotLocked(),
	})
}

func (r *Room) memberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Registry owns the room-name → Room mapping. All access to the mapping
// goes through its methods.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	cfg     *Config
	trivia  *TriviaClient
	timings phaseTimings
}

func newRegistry(cfg *Config, trivia *TriviaClient) *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		cfg:     cfg,
		trivia:  trivia,
		timings: defaultTimings(),
	}
}

// Create registers a new room with p as its first member and host. A
// connection belongs to at most one room, so on success any previous
// membership is dropped; a failed create has no side effect.
func (reg *Registry) Create(name string, p *Player, username string) (*Room, error) {
	reg.mu.Lock()
	if _, taken := reg.rooms[name]; taken {
		reg.mu.Unlock()
		return nil, ErrRoomExists
	}
	prev := reg.leaveLocked(p)
	room := newRoom(name, p.ID)
	reg.rooms[name] = room

	room.mu.Lock()
	p.Username = username
	p.Score = 0
	p.RoomName = name
	room.members[p.ID] = p
	room.mu.Unlock()
	reg.mu.Unlock()

	if prev != nil {
		prev.publishPresence()
	}

	logf(reg.cfg, "ROOMS: %s created %q", p.ID, name)

	room.publishPresence()
	return room, nil
}

// Join adds p to an existing room. On success any previous membership is
// dropped; a failed join has no side effect.
func (reg *Registry) Join(name string, p *Player, username string) (*Room, error) {
	reg.mu.Lock()
	room, ok := reg.rooms[name]
	if !ok {
		reg.mu.Unlock()
		return nil, ErrRoomNotFound
	}

	var prev *Room
	if p.RoomName != name {
		prev = reg.leaveLocked(p)
	}

	// Membership changes happen under reg.mu so a concurrent leave cannot
	// empty-delete the room between lookup and insertion.
	room.mu.Lock()
	p.Username = username
	p.Score = 0
	p.RoomName = name
	room.members[p.ID] = p
	room.mu.Unlock()
	reg.mu.Unlock()

	if prev != nil {
		prev.publishPresence()
	}

	logf(reg.cfg, "ROOMS: %s (%q) joined %q", p.ID, username, name)

	room.publishPresence()
	return room, nil
}

// Leave removes p from whichever room it belongs to. A no-op when p is not
// in a room.
func (reg *Registry) Leave(p *Player) {
	reg.mu.Lock()
	room := reg.leaveLocked(p)
	reg.mu.Unlock()

	if room != nil {
		room.publishPresence()
	}
}

// leaveLocked removes p from its current room under reg.mu. When the last
// member leaves, the active game run (if any) is cancelled, one end_game is
// emitted to the departing connection, and only then is the room deleted.
// Returns the room still owing a presence publish, or nil.
func (reg *Registry) leaveLocked(p *Player) *Room {
	if p.RoomName == "" {
		return nil
	}

	name := p.RoomName
	p.RoomName = ""

	room, ok := reg.rooms[name]
	if !ok {
		return nil
	}

	room.mu.Lock()
	delete(room.members, p.ID)
	empty := len(room.members) == 0
	var cancel context.CancelFunc
	if empty {
		cancel = room.cancel
		room.cancel = nil
	}
	room.mu.Unlock()

	if !empty {
		logf(reg.cfg, "ROOMS: %s left %q", p.ID, name)
		return room
	}

	if cancel != nil {
		cancel()
	}
	// Emit before the room is forgotten; the departing connection is the
	// only remaining audience.
	p.enqueue(EndGameMessage{Type: "end_game"})
	delete(reg.rooms, name)
	logf(reg.cfg, "ROOMS: %q deleted (empty)", name)
	return nil
}

// Get looks up a room by name.
func (reg *Registry) Get(name string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[name]
	return room, ok
}

// AddScore applies a client-reported score delta to p's accumulator. Deltas
// are accepted in any round phase; the settle window at the end of each
// round exists so late reports still land before the scoreboard snapshot.
func (reg *Registry) AddScore(p *Player, delta int) {
	if p.RoomName == "" {
		return
	}
	room, ok := reg.Get(p.RoomName)
	if !ok {
		return
	}
	room.mu.Lock()
	p.Score += delta
	room.mu.Unlock()
}
