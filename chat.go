package main

// ChatMessage is one entry in a room's chat log. IDs are client-supplied
// counters and are not validated server-side.
type ChatMessage struct {
	Username string `json:"username"`
	Content  string `json:"content"`
	ID       int64  `json:"id"`
}

// PostMessage appends a chat message and multicasts the full log to the
// room. An immediate repeat (same author, same content as the previous
// entry) is dropped.
func (r *Room) PostMessage(p *Player, content string, id int64) {
	msg := ChatMessage{
		Username: p.Username,
		Content:  content,
		ID:       id,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if last := r.messages[len(r.messages)-1]; last.Username == msg.Username && last.Content == msg.Content {
		return
	}

	r.messages = append(r.messages, msg)

	log := make([]ChatMessage, len(r.messages))
	copy(log, r.messages)
	r.multicastLocked(ChatLogMessage{
		Type:     "chat_log",
		Messages: log,
	})
}

// chatLog returns a copy of the room's message log.
func (r *Room) chatLog() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := make([]ChatMessage, len(r.messages))
	copy(log, r.messages)
	return log
}
