package deck

import (
	"errors"
	"math/rand"
)

// ErrEmpty is returned by Draw when the pile has no cards left.
var ErrEmpty = errors.New("deck is empty")

// Deck represents a draw pile of Uno cards. The last element is the
// top of the pile.
type Deck []Card

// New creates a full 108-card Uno deck: per color one 0 and two each
// of 1-9, Skip, Reverse and DrawTwo, plus four Wild and four
// WildDrawFour cards.
func New() Deck {
	cards := Deck{}
	for color := Red; color <= Blue; color++ {
		cards = append(cards, Card{Color: color, Rank: Zero})
		for rank := One; rank <= DrawTwo; rank++ {
			cards = append(cards, Card{Color: color, Rank: rank})
			cards = append(cards, Card{Color: color, Rank: rank})
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, Card{Color: Black, Rank: Wild})
		cards = append(cards, Card{Color: Black, Rank: WildDrawFour})
	}
	return cards
}

// Shuffle shuffles the deck of cards in place
func (d *Deck) Shuffle() {
	cards := *d
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Deal deals handSize cards to each player, one card at a time in
// player order. If the pile runs out mid-deal the remaining players
// receive short hands and the shortage is reported.
func (d *Deck) Deal(players []string, handSize int) (map[string][]Card, bool) {
	hands := map[string][]Card{}
	for _, name := range players {
		hands[name] = []Card{}
	}
	for i := 0; i < handSize; i++ {
		for _, name := range players {
			card, err := d.Draw()
			if err != nil {
				return hands, true
			}
			hands[name] = append(hands[name], card)
		}
	}
	return hands, false
}

// Draw removes and returns the top card of the pile
func (d *Deck) Draw() (Card, error) {
	cards := *d
	if len(cards) == 0 {
		return Card{}, ErrEmpty
	}
	card := cards[len(cards)-1]
	*d = cards[:len(cards)-1]
	return card, nil
}
