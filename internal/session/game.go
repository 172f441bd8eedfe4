package session

import (
	"sync"
	"time"

	"palmietopia/internal/clock"
	"palmietopia/internal/engine"
	"palmietopia/pkg/logger"
	"palmietopia/pkg/protocol"
)

// SnapshotSink is the optional persistence contract a Game notifies on
// every TurnChanged delta. internal/snapshot implements this against
// SQLite; a sinkless server passes nil.
type SnapshotSink interface {
	SaveSnapshot(gameID string, state *engine.GameState) error
}

// inboundCommand pairs a command with the player id that sent it (for
// routing a rejection back to the right socket) and the wall-clock
// reading the session layer observed when it arrived — the only place
// "now" enters the otherwise environment-free engine.
type inboundCommand struct {
	playerID string
	cmd      engine.Command
	now      int64
}

// Game is a post-start container: one *engine.GameState, the sockets
// subscribed to it, and a scheduled timer wake. A single goroutine
// (run) owns state exclusively and drains queue; every other method
// only enqueues work for it, and state reads also go through that
// goroutine via queryCh so there is never a second reader racing the
// writer.
type Game struct {
	ID string

	subMu       sync.Mutex
	subscribers map[string]*Session

	queue   chan inboundCommand
	queryCh chan chan *engine.GameState
	done    chan struct{}

	clock *clock.Clock
	sink  SnapshotSink
	log   *logger.ColoredLogger

	state *engine.GameState
}

// NewGame starts a game's dedicated goroutine and arms its first clock
// deadline. Commands enqueued afterward are the only way to touch state.
func NewGame(id string, initial *engine.GameState, sink SnapshotSink) *Game {
	g := &Game{
		ID:          id,
		subscribers: make(map[string]*Session),
		queue:       make(chan inboundCommand, 64),
		queryCh:     make(chan chan *engine.GameState),
		done:        make(chan struct{}),
		clock:       clock.New(),
		sink:        sink,
		log:         logger.CreateGameLogger(id, logger.ColorBrightCyan),
		state:       initial,
	}
	go g.run()
	go g.tickLoop()
	g.armClock()
	return g
}

// tickLoop sends a ~1Hz, non-authoritative TimeTick to every
// subscriber, tagged with game id and turn number so a client that
// receives a stale tick after a turn change can discard it rather
// than flashing the wrong player's clock. The authoritative deadline
// lives in armClock/clock.Clock; this is a display hint only. It
// stops once the game reaches Victory rather than waiting for done,
// since a finished game's clock no longer ticks toward anything.
func (g *Game) tickLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !g.broadcastTick() {
				return
			}
		case <-g.done:
			return
		}
	}
}

// broadcastTick sends one TimeTick and reports whether the game is
// still in progress, so tickLoop knows to keep running.
func (g *Game) broadcastTick() bool {
	state := g.Snapshot()
	if state == nil {
		return false
	}
	if state.Status.Phase == engine.Victory {
		return false
	}
	current := state.CurrentPlayer()
	remaining := clock.Remaining(state.PlayerTimesMs[current.ID], state.TurnStartedAt, time.Now().UnixMilli())
	playerIndex := state.CurrentTurn

	g.lock()
	subs := make([]*Session, 0, len(g.subscribers))
	for _, s := range g.subscribers {
		subs = append(subs, s)
	}
	g.unlock()

	for _, s := range subs {
		s.SendMessage(protocol.MsgTimeTick, protocol.TimeTickPayload{
			GameID:      g.ID,
			TurnNumber:  state.CurrentTurn,
			PlayerIndex: playerIndex,
			RemainingMs: remaining,
		})
	}
	return true
}

func (g *Game) lock()   { g.subMu.Lock() }
func (g *Game) unlock() { g.subMu.Unlock() }

// Enqueue hands a command to the game's owning goroutine. It never
// blocks on a full queue: a saturated game reports the caller's
// command as dropped rather than stalling the socket that sent it.
func (g *Game) Enqueue(playerID string, cmd engine.Command, now int64) bool {
	select {
	case g.queue <- inboundCommand{playerID: playerID, cmd: cmd, now: now}:
		return true
	default:
		return false
	}
}

// Snapshot returns the current authoritative state by routing the read
// through the owning goroutine, so it never races run()'s writes.
func (g *Game) Snapshot() *engine.GameState {
	reply := make(chan *engine.GameState, 1)
	select {
	case g.queryCh <- reply:
		return <-reply
	case <-g.done:
		return nil
	}
}

// Subscribe attaches sess to this game's broadcast set, keyed by
// player id so RejoinGame can replace a stale socket for the same seat.
func (g *Game) Subscribe(sess *Session) {
	g.lock()
	g.subscribers[sess.PlayerID] = sess
	g.unlock()
	sess.AttachGame(g.ID)
}

// Unsubscribe detaches a player's socket without touching their seat,
// gold, units, or clock — disconnects never eliminate a player.
func (g *Game) Unsubscribe(playerID string) {
	g.lock()
	delete(g.subscribers, playerID)
	g.unlock()
}

// run is the single writer of g.state. A panicking invariant violation
// inside engine.Apply is recovered here, logged, and ends this game's
// goroutine — one corrupted game must not take the process down.
func (g *Game) run() {
	defer close(g.done)
	defer g.clock.Stop()
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("invariant violation, tearing down game %s: %v", g.ID, r)
		}
	}()

	for {
		select {
		case ic, ok := <-g.queue:
			if !ok {
				return
			}
			g.apply(ic)
		case reply := <-g.queryCh:
			reply <- g.state
		}
	}
}

func (g *Game) apply(ic inboundCommand) {
	newState, deltas, err := engine.Apply(g.state, ic.cmd, ic.now)
	if err != nil {
		g.sendTo(ic.playerID, protocol.MsgError, protocol.ErrorPayload{Message: err.Error()})
		return
	}
	g.state = newState
	g.armClock()
	g.saveSnapshotIfDue(deltas)
	g.broadcast(deltas)
}

func (g *Game) saveSnapshotIfDue(deltas []engine.Delta) {
	if g.sink == nil {
		return
	}
	for _, d := range deltas {
		if _, ok := d.(engine.TurnChangedDelta); ok {
			if err := g.sink.SaveSnapshot(g.ID, g.state); err != nil {
				g.log.Warn("snapshot save failed for game %s: %v", g.ID, err)
			}
			return
		}
	}
}

// armClock reschedules the single wake-up for the active player's
// zero-time deadline. An expired timer enqueues a synthetic EndTurn
// rather than mutating state directly, preserving single-writer
// discipline.
func (g *Game) armClock() {
	if g.state.Status.Phase == engine.Victory {
		g.clock.Stop()
		return
	}
	current := g.state.CurrentPlayer()
	bank := g.state.PlayerTimesMs[current.ID]
	now := time.Now().UnixMilli()
	deadline := clock.DeadlineFor(bank, g.state.TurnStartedAt, now)
	playerID := current.ID
	g.clock.Reschedule(deadline, func() {
		g.Enqueue(playerID, engine.EndTurn{PlayerID: playerID}, time.Now().UnixMilli())
	})
}

func (g *Game) sendTo(playerID string, msgType protocol.MessageType, payload interface{}) {
	g.lock()
	sess := g.subscribers[playerID]
	g.unlock()
	if sess != nil {
		sess.SendMessage(msgType, payload)
	}
}

// broadcast fans deltas out to every subscriber. Subscribers are
// snapshotted under lock and released before any send, so a slow
// socket never holds up the next command.
func (g *Game) broadcast(deltas []engine.Delta) {
	g.lock()
	subs := make([]*Session, 0, len(g.subscribers))
	for _, s := range g.subscribers {
		subs = append(subs, s)
	}
	g.unlock()

	for _, d := range deltas {
		msgType, payload := protocol.FromDelta(d)
		for _, s := range subs {
			s.SendMessage(msgType, payload)
		}
	}
}
