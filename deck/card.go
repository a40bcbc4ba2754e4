package deck

import (
	"errors"
	"fmt"
)

// Color represents the color of an Uno card
type Color int

var colorNames = []string{"Red", "Yellow", "Green", "Blue", "Black"}

const (
	Red Color = iota
	Yellow
	Green
	Blue
	// Black is the wild color. It matches any top card.
	Black
)

func (c Color) String() string {
	if c < Red || c > Black {
		return fmt.Sprintf("unknown color (%d)", int(c))
	}
	return colorNames[c]
}

// Rank represents the face value of an Uno card
type Rank int

var rankNames = []string{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"Skip", "Reverse", "DrawTwo", "Wild", "WildDrawFour",
}

const (
	Zero Rank = iota
	One
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Skip
	Reverse
	DrawTwo
	Wild
	WildDrawFour
)

func (r Rank) String() string {
	if r < Zero || r > WildDrawFour {
		return fmt.Sprintf("unknown rank (%d)", int(r))
	}
	return rankNames[r]
}

// Card represents a single Uno card. Two cards are equal iff their
// color and rank match, so Card can be used directly as a map key.
type Card struct {
	Color Color
	Rank  Rank
}

// NewCard constructs a card
func NewCard(color, rank int) (Card, error) {
	if color < int(Red) || color > int(Black) || rank < int(Zero) || rank > int(WildDrawFour) {
		return Card{}, errors.New("arguments out of range")
	}
	return Card{Color: Color(color), Rank: Rank(rank)}, nil
}

func (c Card) String() string {
	return fmt.Sprintf("%s %s", c.Color, c.Rank)
}

// ParseColor converts a color token from a text command into a Color
func ParseColor(s string) (Color, error) {
	for i, name := range colorNames {
		if s == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// ParseRank converts a rank token from a text command into a Rank.
// Action ranks are single words ("DrawTwo", "WildDrawFour") so a play
// command is always exactly three tokens.
func ParseRank(s string) (Rank, error) {
	for i, name := range rankNames {
		if s == name {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}
