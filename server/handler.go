package server

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/phuongkuro/Uno-text-based-LAN/deck"
	"github.com/phuongkuro/Uno-text-based-LAN/game"
	"github.com/phuongkuro/Uno-text-based-LAN/protocol"
	"github.com/sirupsen/logrus"
)

// Clients send commands as raw unframed text, one command per read.
const readBufferSize = 1024

func (gs *GameServer) readCommand(conn net.Conn, buf []byte) (string, error) {
	if gs.readTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(gs.readTimeout))
	}
	n, err := conn.Read(buf)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(buf[:n])), nil
}

func (gs *GameServer) handleConnection(conn net.Conn) {
	defer conn.Close()
	log := logger.WithField("remote", conn.RemoteAddr().String())
	log.Info("new connection")

	buf := make([]byte, readBufferSize)
	sess, err := gs.handshake(conn, buf)
	if err != nil {
		log.WithError(err).Info("connection closed before joining")
		return
	}
	log = log.WithFields(logrus.Fields{"player": sess.Name, "session": sess.ID})
	log.Info("player joined")

	gs.broadcast(protocol.NewText(fmt.Sprintf("%s has joined the game.", sess.Name)), sess.Name)
	gs.registry.Unicast(sess.Name, protocol.NewText(
		"Welcome to the game! When all players have joined, the host can start the game with /s."))

	defer gs.dropPlayer(sess.Name, log)

	for {
		cmd, err := gs.readCommand(conn, buf)
		if err != nil {
			log.WithError(err).Info("connection closed")
			return
		}
		if cmd == "" {
			continue
		}
		gs.dispatch(sess.Name, cmd)
	}
}

// handshake reads usernames until one is accepted. Rejections are
// reported to the client, which retries; a join attempt mid-game ends
// the connection.
func (gs *GameServer) handshake(conn net.Conn, buf []byte) (*Session, error) {
	for {
		name, err := gs.readCommand(conn, buf)
		if err != nil {
			return nil, err
		}
		sess, err := gs.register(name, conn)
		switch {
		case err == nil:
			return sess, nil
		case errors.Is(err, game.ErrBlankName):
			protocol.Write(conn, protocol.NewText("Invalid username; username cannot be blank."))
		case errors.Is(err, game.ErrDuplicatePlayer), errors.Is(err, ErrNameTaken):
			protocol.Write(conn, protocol.NewText("Username has been taken, please choose another"))
		case errors.Is(err, game.ErrGameInProgress):
			protocol.Write(conn, protocol.NewText("The game is already in progress."))
			return nil, err
		default:
			return nil, err
		}
	}
}

// register admits a player to both the table and the registry as one
// critical section, keeping their memberships in sync.
func (gs *GameServer) register(name string, conn net.Conn) (*Session, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if err := gs.table.AddPlayer(name); err != nil {
		return nil, err
	}
	sess, err := gs.registry.Register(name, conn)
	if err != nil {
		gs.table.RemovePlayer(name)
		return nil, err
	}
	return sess, nil
}

func (gs *GameServer) dropPlayer(name string, log logrus.FieldLogger) {
	gs.mu.Lock()
	gs.registry.Unregister(name)
	gs.table.RemovePlayer(name)
	gs.mu.Unlock()
	log.Info("player left")
	gs.broadcast(protocol.NewText(fmt.Sprintf("%s has left the game.", name)))
}

// broadcast fans a message out and evicts any player whose connection
// failed mid-delivery, announcing their departure to the rest.
func (gs *GameServer) broadcast(msg protocol.Message, exclude ...string) {
	for _, name := range gs.registry.Broadcast(msg, exclude...) {
		gs.mu.Lock()
		gs.table.RemovePlayer(name)
		gs.mu.Unlock()
		logger.WithField("player", name).Warn("pruned unreachable player")
		gs.broadcast(protocol.NewText(fmt.Sprintf("%s has left the game.", name)))
	}
}

func (gs *GameServer) announceTurn(current string) {
	for _, name := range gs.registry.Names() {
		if name == current {
			gs.registry.Unicast(name, protocol.NewText("It's your turn to play."))
		} else {
			gs.registry.Unicast(name, protocol.NewText(fmt.Sprintf("It's %s's turn.", current)))
		}
	}
}

func (gs *GameServer) dispatch(name, cmd string) {
	switch {
	case cmd == "/s":
		gs.handleStart(name)
	case cmd == "DRAW":
		gs.handleDraw(name)
	case strings.HasPrefix(cmd, "PLAY"):
		gs.handlePlay(name, cmd)
	default:
		gs.broadcast(protocol.NewText(fmt.Sprintf("%s: %s", name, cmd)), name)
	}
}

// handleStart starts the game on behalf of the host (the first player
// to have joined).
func (gs *GameServer) handleStart(name string) {
	gs.mu.Lock()
	players := gs.table.Players()
	if len(players) > 0 && players[0] != name {
		gs.mu.Unlock()
		gs.registry.Unicast(name, protocol.NewText("Only the host can start the game."))
		return
	}
	if err := gs.table.Start(); err != nil {
		gs.mu.Unlock()
		switch {
		case errors.Is(err, game.ErrTooFewPlayers):
			gs.broadcast(protocol.NewText("At least two players are needed to start the game."))
		case errors.Is(err, game.ErrGameInProgress):
			gs.registry.Unicast(name, protocol.NewText("The game has already started."))
		}
		return
	}
	players = gs.table.Players()
	hands := map[string][]deck.Card{}
	for _, p := range players {
		hands[p] = gs.table.Hand(p)
	}
	current := gs.table.CurrentPlayer()
	gs.mu.Unlock()

	logger.WithField("players", len(players)).Info("game started")
	gs.broadcast(protocol.NewText("Shuffling deck and starting the game."))
	for _, p := range players {
		gs.registry.Unicast(p, protocol.NewHand(hands[p]))
	}
	gs.announceTurn(current)
}

func (gs *GameServer) handlePlay(name, cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) != 3 {
		gs.registry.Unicast(name, protocol.NewText("Invalid card format. Try again."))
		return
	}
	color, colorErr := deck.ParseColor(fields[1])
	rank, rankErr := deck.ParseRank(fields[2])
	if colorErr != nil || rankErr != nil {
		gs.registry.Unicast(name, protocol.NewText("Invalid card format. Try again."))
		return
	}
	card := deck.Card{Color: color, Rank: rank}

	gs.mu.Lock()
	if err := gs.table.ApplyPlay(name, card); err != nil {
		gs.mu.Unlock()
		gs.registry.Unicast(name, protocol.NewText(playErrorText(err)))
		return
	}
	hand := gs.table.Hand(name)
	finished := gs.table.State() == game.Finished
	current := gs.table.CurrentPlayer()
	gs.mu.Unlock()

	gs.broadcast(protocol.NewText(fmt.Sprintf("Player %s played: %s", name, card)))
	gs.registry.Unicast(name, protocol.NewHand(hand))
	if finished {
		gs.broadcast(protocol.NewText(fmt.Sprintf("%s has won the game!", name)))
		return
	}
	gs.announceTurn(current)
}

func playErrorText(err error) string {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return "It's not your turn."
	case errors.Is(err, game.ErrCardNotInHand):
		return "You don't have that card. Try again."
	case errors.Is(err, game.ErrGameNotStarted):
		return "The game has not started yet."
	case errors.Is(err, game.ErrGameOver):
		return "The game is over."
	default:
		return "Invalid card played. Try again."
	}
}

func (gs *GameServer) handleDraw(name string) {
	gs.mu.Lock()
	if _, started := gs.table.TopCard(); !started &&
		gs.table.State() == game.InProgress && gs.table.CurrentPlayer() == name {
		gs.mu.Unlock()
		gs.registry.Unicast(name, protocol.NewText("You shall not pass on the first turn!"))
		gs.registry.Unicast(name, protocol.NewText("It's your turn to play."))
		return
	}
	card, err := gs.table.DrawForCurrentPlayer(name)
	if err != nil {
		gs.mu.Unlock()
		gs.registry.Unicast(name, protocol.NewText(drawErrorText(err)))
		return
	}
	hand := gs.table.Hand(name)
	keepTurn := gs.table.HasPlayable(name)
	var current string
	if !keepTurn {
		gs.table.AdvanceTurn()
		current = gs.table.CurrentPlayer()
	}
	gs.mu.Unlock()

	gs.registry.Unicast(name, protocol.NewText(fmt.Sprintf("You drew: %s", card)))
	gs.registry.Unicast(name, protocol.NewHand(hand))
	if keepTurn {
		gs.registry.Unicast(name, protocol.NewText("It's your turn to play."))
	} else {
		gs.announceTurn(current)
	}
}

func drawErrorText(err error) string {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return "It's not your turn."
	case errors.Is(err, game.ErrAlreadyDrawn):
		return "You have already drawn a card."
	case errors.Is(err, game.ErrDeckExhausted):
		return "There are no cards left to draw."
	case errors.Is(err, game.ErrGameNotStarted):
		return "The game has not started yet."
	case errors.Is(err, game.ErrGameOver):
		return "The game is over."
	default:
		return "You cannot draw right now."
	}
}
