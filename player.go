package main

// Player holds the data we store server-side for one websocket connection.
// Username and Score are set when the connection creates or joins a room;
// RoomName is a convenience back-reference, the room's member set is
// authoritative.
type Player struct {
	ID       string
	Username string
	Score    int
	RoomName string

	send chan any
}

// PlayerInfo is the per-member entry of a presence snapshot.
type PlayerInfo struct {
	ID       string `json:"id"`
	RoomName string `json:"roomName"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

func newPlayer(id string) *Player {
	return &Player{
		ID:   id,
		send: make(chan any, 64),
	}
}

// enqueue hands a message to the connection's write pump without blocking.
// A full buffer means the client is too slow to keep up; the message is
// dropped rather than letting one connection stall a whole room.
func (p *Player) enqueue(msg any) bool {
	select {
	case p.send <- msg:
		return true
	default:
		return false
	}
}

func (p *Player) info() PlayerInfo {
	return PlayerInfo{
		ID:       p.ID,
		RoomName: p.RoomName,
		Username: p.Username,
		Score:    p.Score,
	}
}
