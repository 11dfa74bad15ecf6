package main

import (
	"testing"
)

func TestChatDedup(t *testing.T) {
	reg := newTestRegistry()
	a := newPlayer("conn-a")
	b := newPlayer("conn-b")

	room, err := reg.Create("ABC", a, "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := reg.Join("ABC", b, "bob"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	room.PostMessage(a, "hi", 1)
	room.PostMessage(a, "hi", 2)

	log := room.chatLog()
	if len(log) != 2 { // welcome + one "hi"
		t.Fatalf("Immediate repeat should be dropped, log has %d entries", len(log))
	}

	room.PostMessage(b, "hi", 1)

	log = room.chatLog()
	if len(log) != 3 {
		t.Fatalf("Same content from a different author should append, log has %d entries", len(log))
	}
	if log[1].Username != "alice" || log[2].Username != "bob" {
		t.Errorf("Unexpected log order: %+v", log)
	}

	room.PostMessage(a, "hi", 3)
	if got := len(room.chatLog()); got != 4 {
		t.Errorf("Repeat that is no longer immediate should append, log has %d entries", got)
	}
}

func TestChatBroadcastsFullLog(t *testing.T) {
	reg := newTestRegistry()
	a := newPlayer("conn-a")
	b := newPlayer("conn-b")

	room, err := reg.Create("ABC", a, "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := reg.Join("ABC", b, "bob"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	drain(a)
	drain(b)

	room.PostMessage(a, "good luck!", 1)

	for _, p := range []*Player{a, b} {
		msg, ok := nextMessage(t, p).(ChatLogMessage)
		if !ok {
			t.Fatalf("Expected ChatLogMessage")
		}
		if len(msg.Messages) != 2 {
			t.Fatalf("Expected full log of 2 entries, got %d", len(msg.Messages))
		}
		if msg.Messages[0].Username != systemUsername {
			t.Errorf("Expected welcome message first, got %+v", msg.Messages[0])
		}
		if msg.Messages[1].Content != "good luck!" {
			t.Errorf("Unexpected appended message: %+v", msg.Messages[1])
		}
	}
}
