package main

import (
	"context"
	"time"
)

type roundKind string

const (
	roundTrivia1 roundKind = "trivia1"
	roundWhack   roundKind = "whack"
	roundMemory  roundKind = "memory"
	roundSnake   roundKind = "snake"
	roundTrivia2 roundKind = "trivia2"
)

// startFlags selects which rounds a game includes. Order is fixed; an unset
// flag skips its entry. Trivia, when requested, bookends the game with a
// geography round first and a general-knowledge round last.
type startFlags struct {
	Trivia bool
	Whack  bool
	Memory bool
	Snake  bool
}

func buildPlan(flags startFlags) []roundKind {
	plan := make([]roundKind, 0, 5)
	if flags.Trivia {
		plan = append(plan, roundTrivia1)
	}
	if flags.Whack {
		plan = append(plan, roundWhack)
	}
	if flags.Memory {
		plan = append(plan, roundMemory)
	}
	if flags.Snake {
		plan = append(plan, roundSnake)
	}
	if flags.Trivia {
		plan = append(plan, roundTrivia2)
	}
	return plan
}

// phaseTimings holds the per-phase durations of a round. The defaults are
// the contract; tests compress them.
type phaseTimings struct {
	preRound  time.Duration // scoreboard + instructions between rounds
	countdown time.Duration
	trivia    time.Duration // active phase of a trivia round
	arcade    time.Duration // active phase of whack/memory/snake
	settle    time.Duration // grace past the active phase for late score reports
}

func defaultTimings() phaseTimings {
	return phaseTimings{
		preRound:  8 * time.Second,
		countdown: 5 * time.Second,
		trivia:    20 * time.Second,
		arcade:    30 * time.Second,
		settle:    3 * time.Second,
	}
}

func (t phaseTimings) active(kind roundKind) time.Duration {
	switch kind {
	case roundTrivia1, roundTrivia2:
		return t.trivia
	default:
		return t.arcade
	}
}

func triviaTopic(kind roundKind) string {
	if kind == roundTrivia1 {
		return "geography"
	}
	return "general"
}

// StartGame launches the round sequence for a room as a cancellable run.
// At most one run per room; a second start while one is active is rejected
// and the existing run is left untouched.
func (reg *Registry) StartGame(name string, flags startFlags) error {
	room, ok := reg.Get(name)
	if !ok {
		return ErrRoomNotFound
	}

	plan := buildPlan(flags)
	if len(plan) == 0 {
		return nil
	}

	room.mu.Lock()
	if room.cancel != nil {
		room.mu.Unlock()
		return ErrGameRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	room.cancel = cancel
	room.mu.Unlock()

	logf(reg.cfg, "GAMES: starting %d round(s) in %q", len(plan), name)
	go reg.runGame(ctx, room, plan)

	return nil
}

// runGame drives one room through its plan. Phases within the run are
// strictly sequential; the only suspension points are the phase timers and
// the trivia fetch. A cancelled context stops the run before its next
// emission.
func (reg *Registry) runGame(ctx context.Context, room *Room, plan []roundKind) {
	for _, kind := range plan {
		if !reg.runRound(ctx, room, kind) {
			// Cancelled: the teardown that cancelled us already released
			// the run handle and emitted end_game.
			return
		}
	}

	// Release the run handle and emit end_game under one lock, so a
	// follow-up start-game's events sort strictly after this run's close.
	room.mu.Lock()
	if room.cancel != nil {
		room.cancel()
		room.cancel = nil
	}
	room.multicastLocked(EndGameMessage{Type: "end_game"})
	room.mu.Unlock()

	logf(reg.cfg, "GAMES: finished in %q", room.Name)
}

// runRound walks one round through PreRound, Countdown, Active, and the
// settle window, emitting the phase events as it goes. Returns false when
// the run was cancelled mid-round.
func (reg *Registry) runRound(ctx context.Context, room *Room, kind roundKind) bool {
	timings := reg.timings

	room.multicast(SetRoundMessage{Type: "set_round", Round: string(kind)})
	room.multicast(ScoreboardMessage{Type: "scoreboard", Visible: true})
	if !sleepCtx(ctx, timings.preRound) {
		return false
	}

	room.multicast(ScoreboardMessage{Type: "scoreboard", Visible: false})
	room.multicast(CountdownMessage{Type: "countdown", Visible: true})
	if !sleepCtx(ctx, timings.countdown) {
		return false
	}
	room.multicast(CountdownMessage{Type: "countdown", Visible: false})

	active := timings.active(kind)
	start := StartRoundMessage{
		Type:       "start_round",
		Round:      string(kind),
		DurationMs: active.Milliseconds(),
	}

	if kind == roundTrivia1 || kind == roundTrivia2 {
		question, err := reg.trivia.FetchQuestion(ctx, triviaTopic(kind))
		if err != nil {
			// The round still runs its full duration; the client shows a
			// degraded payload instead of a stalled game.
			Log.Warnf("trivia fetch failed for room %q: %v", room.Name, err)
			start.Error = "question unavailable"
		} else {
			start.Question = question
		}
	}

	if ctx.Err() != nil {
		return false
	}
	room.multicast(start)

	// Hold past the nominal duration so late score reports land before the
	// closing scoreboard snapshot.
	if !sleepCtx(ctx, active+timings.settle) {
		return false
	}

	room.publishPresence()
	return true
}

// sleepCtx waits for d, or returns false early if ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
