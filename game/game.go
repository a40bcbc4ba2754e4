package game

import (
	"errors"
	"strings"

	"github.com/phuongkuro/Uno-text-based-LAN/deck"
)

// State represents the lifecycle of a table
// Lobby -> accepting joins, no turn order fixed
// InProgress -> turn order fixed, cards dealt
// Finished -> a player emptied their hand
type State int

const (
	Lobby State = iota
	InProgress
	Finished
)

var stateNames = []string{"Lobby", "InProgress", "Finished"}

func (s State) String() string {
	return stateNames[s]
}

var (
	ErrBlankName       = errors.New("player name cannot be blank")
	ErrDuplicatePlayer = errors.New("player name already taken")
	ErrGameInProgress  = errors.New("game has already started")
	ErrGameNotStarted  = errors.New("game has not started")
	ErrGameOver        = errors.New("game is already over")
	ErrTooFewPlayers   = errors.New("minimum of 2 players required")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrIllegalPlay     = errors.New("card does not match the top card")
	ErrCardNotInHand   = errors.New("card is not in hand")
	ErrAlreadyDrawn    = errors.New("already drawn a card this turn")
	ErrDeckExhausted   = errors.New("draw and discard piles are exhausted")
)

// Table is the single source of truth for one game of Uno: the turn
// order, the draw and discard piles and every player's hand. It is not
// safe for concurrent use; the server serializes all access through
// one lock.
type Table struct {
	state      State
	players    []string // turn order = join order
	currentIdx int
	direction  int // +1 or -1
	drawPile   deck.Deck
	discard    []deck.Card
	hands      map[string][]deck.Card
	hasDrawn   map[string]bool
	shortDeal  bool
	winner     string
}

// NewTable constructs an empty table in the Lobby state
func NewTable() *Table {
	return &Table{
		state:     Lobby,
		players:   []string{},
		direction: 1,
		hands:     map[string][]deck.Card{},
		hasDrawn:  map[string]bool{},
	}
}

// AddPlayer registers a player at the end of the turn order. Names are
// case-sensitive and immutable once accepted.
func (t *Table) AddPlayer(name string) error {
	if t.state != Lobby {
		return ErrGameInProgress
	}
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	for _, p := range t.players {
		if p == name {
			return ErrDuplicatePlayer
		}
	}
	t.players = append(t.players, name)
	return nil
}

// Start fixes the turn order to join order, shuffles a fresh deck and
// deals 7 cards to each player. No top card is set; the first play of
// the game establishes it.
func (t *Table) Start() error {
	if t.state == InProgress {
		return ErrGameInProgress
	}
	if len(t.players) < 2 {
		return ErrTooFewPlayers
	}
	t.drawPile = deck.New()
	t.drawPile.Shuffle()
	t.hands, t.shortDeal = t.drawPile.Deal(t.players, 7)
	t.discard = []deck.Card{}
	t.currentIdx = 0
	t.direction = 1
	t.hasDrawn = map[string]bool{}
	t.winner = ""
	t.state = InProgress
	return nil
}

// State returns the table lifecycle state
func (t *Table) State() State {
	return t.state
}

// Players returns the turn order
func (t *Table) Players() []string {
	out := make([]string, len(t.players))
	copy(out, t.players)
	return out
}

// CurrentPlayer returns the name of the player whose turn it is
func (t *Table) CurrentPlayer() string {
	if len(t.players) == 0 {
		return ""
	}
	return t.players[t.currentIdx]
}

// TopCard returns the most recently played card. ok is false before
// the first play of the game.
func (t *Table) TopCard() (deck.Card, bool) {
	if len(t.discard) == 0 {
		return deck.Card{}, false
	}
	return t.discard[len(t.discard)-1], true
}

// Hand returns a copy of the named player's hand
func (t *Table) Hand(name string) []deck.Card {
	hand, ok := t.hands[name]
	if !ok {
		return nil
	}
	out := make([]deck.Card, len(hand))
	copy(out, hand)
	return out
}

// Winner returns the player who emptied their hand, if any
func (t *Table) Winner() string {
	return t.winner
}

// ShortDeal reports whether the initial deal ran out of cards
func (t *Table) ShortDeal() bool {
	return t.shortDeal
}

// DrawPileSize returns the number of cards left in the draw pile
func (t *Table) DrawPileSize() int {
	return len(t.drawPile)
}

// DiscardPileSize returns the number of cards in the discard pile
func (t *Table) DiscardPileSize() int {
	return len(t.discard)
}

func (t *Table) matchesTop(card deck.Card) bool {
	top, ok := t.TopCard()
	if !ok {
		// first play of the game: any card is acceptable
		return true
	}
	return card.Color == top.Color || card.Rank == top.Rank || card.Color == deck.Black
}

// LegalPlay reports whether the named player may play the card right
// now. It does not check hand membership.
func (t *Table) LegalPlay(name string, card deck.Card) bool {
	if t.state != InProgress || name != t.CurrentPlayer() {
		return false
	}
	return t.matchesTop(card)
}

// HasPlayable reports whether the named player holds at least one card
// that could legally be played on the current top card.
func (t *Table) HasPlayable(name string) bool {
	for _, card := range t.hands[name] {
		if t.matchesTop(card) {
			return true
		}
	}
	return false
}

// ApplyPlay moves the card from the player's hand to the top of the
// discard pile and applies its side effect: Reverse flips the
// direction and steps past the next player in the new direction (with
// 2 players the same player goes again), Skip advances twice, every
// other rank advances once. A rejected play leaves the table
// untouched.
func (t *Table) ApplyPlay(name string, card deck.Card) error {
	switch t.state {
	case Lobby:
		return ErrGameNotStarted
	case Finished:
		return ErrGameOver
	}
	if name != t.CurrentPlayer() {
		return ErrNotYourTurn
	}
	if !t.matchesTop(card) {
		return ErrIllegalPlay
	}
	hand := t.hands[name]
	idx := -1
	for i, c := range hand {
		if c == card {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrCardNotInHand
	}

	t.hands[name] = append(hand[:idx], hand[idx+1:]...)
	t.discard = append(t.discard, card)

	if len(t.hands[name]) == 0 {
		t.state = Finished
		t.winner = name
		return nil
	}

	switch card.Rank {
	case deck.Reverse:
		// flip, then step past the next player in the new direction.
		// With two players the turn comes straight back.
		t.direction = -t.direction
		t.AdvanceTurn()
		t.AdvanceTurn()
	case deck.Skip:
		t.AdvanceTurn()
		t.AdvanceTurn()
	default:
		t.AdvanceTurn()
	}
	return nil
}

// DrawForCurrentPlayer draws one card into the named player's hand.
// Each player may draw at most once per turn. When the draw pile is
// empty the discard pile (minus the top card) is reshuffled into it;
// if that yields nothing the draw fails with ErrDeckExhausted.
func (t *Table) DrawForCurrentPlayer(name string) (deck.Card, error) {
	switch t.state {
	case Lobby:
		return deck.Card{}, ErrGameNotStarted
	case Finished:
		return deck.Card{}, ErrGameOver
	}
	if name != t.CurrentPlayer() {
		return deck.Card{}, ErrNotYourTurn
	}
	if t.hasDrawn[name] {
		return deck.Card{}, ErrAlreadyDrawn
	}
	card, err := t.drawPile.Draw()
	if errors.Is(err, deck.ErrEmpty) {
		t.reshuffleFromDiscard()
		card, err = t.drawPile.Draw()
	}
	if err != nil {
		return deck.Card{}, ErrDeckExhausted
	}
	t.hands[name] = append(t.hands[name], card)
	t.hasDrawn[name] = true
	return card, nil
}

// reshuffleFromDiscard moves every discard card except the current top
// back into the draw pile and shuffles it.
func (t *Table) reshuffleFromDiscard() {
	if len(t.discard) < 2 {
		return
	}
	top := t.discard[len(t.discard)-1]
	t.drawPile = append(t.drawPile, t.discard[:len(t.discard)-1]...)
	t.discard = []deck.Card{top}
	t.drawPile.Shuffle()
}

// AdvanceTurn moves the turn pointer one step in the current direction
// and resets the incoming player's draw allowance.
func (t *Table) AdvanceTurn() {
	n := len(t.players)
	if n == 0 {
		return
	}
	t.currentIdx = ((t.currentIdx+t.direction)%n + n) % n
	t.hasDrawn[t.players[t.currentIdx]] = false
}

// RemovePlayer drops a player from the turn order and discards their
// hand. The turn pointer is clamped so it stays valid; no turn
// forfeit signal is raised beyond the repositioning.
func (t *Table) RemovePlayer(name string) {
	idx := -1
	for i, p := range t.players {
		if p == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	t.players = append(t.players[:idx], t.players[idx+1:]...)
	delete(t.hands, name)
	delete(t.hasDrawn, name)

	if len(t.players) == 0 {
		t.currentIdx = 0
		return
	}
	if idx < t.currentIdx {
		t.currentIdx--
	}
	t.currentIdx = ((t.currentIdx % len(t.players)) + len(t.players)) % len(t.players)
}
