// Package handlers owns the WebSocket transport: upgrading HTTP
// connections, running each socket's read/write pumps, and translating
// between wire envelopes and internal/session.Manager calls.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"palmietopia/internal/engine"
	"palmietopia/internal/session"
	"palmietopia/pkg/config"
	"palmietopia/pkg/logger"
	"palmietopia/pkg/protocol"
)

// WebSocketHandler upgrades incoming connections and dispatches decoded
// envelopes into a session.Manager. It never touches *engine.GameState
// directly, only calls Manager/Game methods that enqueue work onto the
// owning goroutine.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	mgr      *session.Manager
	cfg      config.WebSocketConfig
	log      *logger.ColoredLogger

	// playerSessions tracks a lobby player's live socket so a lobby
	// mutation (join/leave) can be fanned out to every seat — games
	// fan out through Game.broadcast instead, since each owns its own
	// subscriber set once started.
	mu             sync.Mutex
	playerSessions map[string]*session.Session
}

// NewWebSocketHandler builds a handler bound to mgr.
func NewWebSocketHandler(mgr *session.Manager, cfg config.WebSocketConfig) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mgr:            mgr,
		cfg:            cfg,
		log:            logger.NewColoredLogger("WS", logger.ColorBrightGreen),
		playerSessions: make(map[string]*session.Session),
	}
}

// HandleWebSocket upgrades the request and runs the connection's
// read pump until the client disconnects.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("upgrade failed: %v", err)
		return
	}

	sock := newWSSocket(conn, h.cfg)
	sess := session.NewSession(uuid.New().String(), sock)
	go sock.writePump()

	h.log.Info("connection established: session %s", sess.ID)
	h.readLoop(sess, sock)
}

func (h *WebSocketHandler) readLoop(sess *session.Session, sock *wsSocket) {
	defer h.onDisconnect(sess)

	maxSize := h.cfg.MaxMessageSize
	if maxSize <= 0 {
		maxSize = 8192
	}
	sock.conn.SetReadLimit(maxSize)
	sock.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	sock.conn.SetPongHandler(func(string) error {
		sock.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
		return nil
	})

	for {
		_, raw, err := sock.conn.ReadMessage()
		if err != nil {
			h.log.Info("connection closed: session %s: %v", sess.ID, err)
			return
		}
		sess.Touch()

		env, err := protocol.Decode(raw)
		if err != nil {
			sess.SendMessage(protocol.MsgError, protocol.ErrorPayload{Message: err.Error()})
			continue
		}
		h.dispatch(sess, env)
	}
}

func (h *WebSocketHandler) onDisconnect(sess *session.Session) {
	h.mu.Lock()
	if sess.PlayerID != "" {
		delete(h.playerSessions, sess.PlayerID)
	}
	h.mu.Unlock()
	h.mgr.Disconnect(sess)
	sess.Close()
}

// dispatch decodes env.Payload into the matching concrete type and
// calls the corresponding Manager/Game method, translating any error
// into a wire Error{message} addressed only to the originating
// session rather than dropping the connection.
func (h *WebSocketHandler) dispatch(sess *session.Session, env protocol.Envelope) {
	var err error
	switch env.Type {
	case protocol.MsgCreateLobby:
		err = h.handleCreateLobby(sess, env)
	case protocol.MsgJoinLobby:
		err = h.handleJoinLobby(sess, env)
	case protocol.MsgLeaveLobby:
		err = h.handleLeaveLobby(sess)
	case protocol.MsgListLobbies:
		err = h.handleListLobbies(sess)
	case protocol.MsgStartGame:
		err = h.handleStartGame(sess)
	case protocol.MsgRejoinGame:
		err = h.handleRejoinGame(sess, env)
	case protocol.MsgMoveUnit:
		err = h.handleMoveUnit(sess, env)
	case protocol.MsgAttackUnit:
		err = h.handleAttackUnit(sess, env)
	case protocol.MsgFortifyUnit:
		err = h.handleFortifyUnit(sess, env)
	case protocol.MsgBuyUnit:
		err = h.handleBuyUnit(sess, env)
	case protocol.MsgEndTurn:
		err = h.handleEndTurn(sess, env)
	default:
		err = fmt.Errorf("unknown message type: %s", env.Type)
	}
	if err != nil {
		sess.SendMessage(protocol.MsgError, protocol.ErrorPayload{Message: err.Error()})
	}
}

func decodePayload(raw json.RawMessage, target interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}

func (h *WebSocketHandler) handleCreateLobby(sess *session.Session, env protocol.Envelope) error {
	var p protocol.CreateLobbyPayload
	if err := decodePayload(env.Payload, &p); err != nil {
		return err
	}
	lobby, err := h.mgr.CreateLobby(sess, p.PlayerName, p.MapSize)
	if err != nil {
		return err
	}
	h.registerPlayerSession(sess)
	return sess.SendMessage(protocol.MsgLobbyCreated, protocol.LobbyCreatedPayload{
		LobbyID:  lobby.ID,
		PlayerID: sess.PlayerID,
	})
}

func (h *WebSocketHandler) handleJoinLobby(sess *session.Session, env protocol.Envelope) error {
	var p protocol.JoinLobbyPayload
	if err := decodePayload(env.Payload, &p); err != nil {
		return err
	}
	lobby, err := h.mgr.JoinLobby(sess, p.LobbyID, p.PlayerName)
	if err != nil {
		return err
	}
	h.registerPlayerSession(sess)
	if err := sess.SendMessage(protocol.MsgJoinedLobby, protocol.JoinedLobbyPayload{
		Lobby:    session.ToView(lobby),
		PlayerID: sess.PlayerID,
	}); err != nil {
		return err
	}
	h.broadcastLobbyUpdated(lobby)
	return nil
}

func (h *WebSocketHandler) handleLeaveLobby(sess *session.Session) error {
	departedID := sess.PlayerID
	lobby, err := h.mgr.LeaveLobby(sess)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.playerSessions, departedID)
	h.mu.Unlock()
	if lobby != nil {
		h.broadcastPlayerLeft(lobby, departedID)
		h.broadcastLobbyUpdated(lobby)
	}
	return nil
}

func (h *WebSocketHandler) handleListLobbies(sess *session.Session) error {
	lobbies := h.mgr.ListLobbies()
	views := make([]protocol.LobbyView, len(lobbies))
	for i, l := range lobbies {
		views[i] = session.ToView(l)
	}
	return sess.SendMessage(protocol.MsgLobbyList, protocol.LobbyListPayload{Lobbies: views})
}

func (h *WebSocketHandler) handleStartGame(sess *session.Session) error {
	game, err := h.mgr.StartGame(sess)
	if err != nil {
		return err
	}
	state := game.Snapshot()

	// Every other seat in the new game had a lobby socket but is not
	// yet subscribed to the Game itself — only the caller is, via
	// Manager.StartGame. Subscribe and notify each of them here.
	h.mu.Lock()
	lobbyMates := make([]*session.Session, 0, len(state.Players))
	for _, p := range state.Players {
		if p.ID == sess.PlayerID {
			continue
		}
		if other, ok := h.playerSessions[p.ID]; ok {
			lobbyMates = append(lobbyMates, other)
		}
	}
	h.mu.Unlock()

	for _, other := range lobbyMates {
		game.Subscribe(other)
		view := session.ToGameView(state, game.ConnectedPlayerIDs())
		other.SendMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{Game: view})
	}

	view := session.ToGameView(state, game.ConnectedPlayerIDs())
	return sess.SendMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{Game: view})
}

func (h *WebSocketHandler) handleRejoinGame(sess *session.Session, env protocol.Envelope) error {
	var p protocol.RejoinGamePayload
	if err := decodePayload(env.Payload, &p); err != nil {
		return err
	}
	game, err := h.mgr.RejoinGame(sess, p.GameID, p.PlayerID)
	if err != nil {
		return err
	}
	view := session.ToGameView(game.Snapshot(), game.ConnectedPlayerIDs())
	return sess.SendMessage(protocol.MsgGameRejoined, protocol.GameRejoinedPayload{Game: view})
}

func (h *WebSocketHandler) handleMoveUnit(sess *session.Session, env protocol.Envelope) error {
	var p protocol.MoveUnitPayload
	if err := decodePayload(env.Payload, &p); err != nil {
		return err
	}
	game, err := h.mgr.Game(p.GameID)
	if err != nil {
		return err
	}
	game.Enqueue(p.PlayerID, engine.MoveUnit{PlayerID: p.PlayerID, UnitID: p.UnitID, ToQ: p.ToQ, ToR: p.ToR}, time.Now().UnixMilli())
	return nil
}

func (h *WebSocketHandler) handleAttackUnit(sess *session.Session, env protocol.Envelope) error {
	var p protocol.AttackUnitPayload
	if err := decodePayload(env.Payload, &p); err != nil {
		return err
	}
	game, err := h.mgr.Game(p.GameID)
	if err != nil {
		return err
	}
	game.Enqueue(p.PlayerID, engine.AttackUnit{PlayerID: p.PlayerID, AttackerID: p.AttackerID, DefenderID: p.DefenderID}, time.Now().UnixMilli())
	return nil
}

func (h *WebSocketHandler) handleFortifyUnit(sess *session.Session, env protocol.Envelope) error {
	var p protocol.FortifyUnitPayload
	if err := decodePayload(env.Payload, &p); err != nil {
		return err
	}
	game, err := h.mgr.Game(p.GameID)
	if err != nil {
		return err
	}
	game.Enqueue(p.PlayerID, engine.FortifyUnit{PlayerID: p.PlayerID, UnitID: p.UnitID}, time.Now().UnixMilli())
	return nil
}

func (h *WebSocketHandler) handleBuyUnit(sess *session.Session, env protocol.Envelope) error {
	var p protocol.BuyUnitPayload
	if err := decodePayload(env.Payload, &p); err != nil {
		return err
	}
	game, err := h.mgr.Game(p.GameID)
	if err != nil {
		return err
	}
	game.Enqueue(p.PlayerID, engine.BuyUnit{PlayerID: p.PlayerID, CityID: p.CityID, Kind: p.UnitType}, time.Now().UnixMilli())
	return nil
}

func (h *WebSocketHandler) handleEndTurn(sess *session.Session, env protocol.Envelope) error {
	var p protocol.EndTurnPayload
	if err := decodePayload(env.Payload, &p); err != nil {
		return err
	}
	game, err := h.mgr.Game(p.GameID)
	if err != nil {
		return err
	}
	game.Enqueue(p.PlayerID, engine.EndTurn{PlayerID: p.PlayerID}, time.Now().UnixMilli())
	return nil
}

func (h *WebSocketHandler) registerPlayerSession(sess *session.Session) {
	h.mu.Lock()
	h.playerSessions[sess.PlayerID] = sess
	h.mu.Unlock()
}

// broadcastPlayerLeft notifies a lobby's remaining seats that
// playerID has left, ahead of the LobbyUpdated that carries the new
// roster.
func (h *WebSocketHandler) broadcastPlayerLeft(lobby *session.Lobby, playerID string) {
	h.mu.Lock()
	recipients := make([]*session.Session, 0, len(lobby.Players))
	for _, p := range lobby.Players {
		if s, ok := h.playerSessions[p.ID]; ok {
			recipients = append(recipients, s)
		}
	}
	h.mu.Unlock()
	for _, s := range recipients {
		s.SendMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{PlayerID: playerID})
	}
}

func (h *WebSocketHandler) broadcastLobbyUpdated(lobby *session.Lobby) {
	view := session.ToView(lobby)
	h.mu.Lock()
	recipients := make([]*session.Session, 0, len(lobby.Players))
	for _, p := range lobby.Players {
		if s, ok := h.playerSessions[p.ID]; ok {
			recipients = append(recipients, s)
		}
	}
	h.mu.Unlock()
	for _, s := range recipients {
		s.SendMessage(protocol.MsgLobbyUpdated, protocol.LobbyUpdatedPayload{Lobby: view})
	}
}
