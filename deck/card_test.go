package deck

import (
	"testing"

	utils "github.com/phuongkuro/Uno-text-based-LAN/internal"
	"github.com/stretchr/testify/assert"
)

func TestCardString(t *testing.T) {
	cases := []struct {
		card Card
		want string
	}{
		{Card{Red, Five}, "Red 5"},
		{Card{Yellow, Zero}, "Yellow 0"},
		{Card{Green, Skip}, "Green Skip"},
		{Card{Blue, Reverse}, "Blue Reverse"},
		{Card{Blue, DrawTwo}, "Blue DrawTwo"},
		{Card{Black, Wild}, "Black Wild"},
		{Card{Black, WildDrawFour}, "Black WildDrawFour"},
	}

	for _, c := range cases {
		utils.AssertEqual(t, c.card.String(), c.want)
	}
}

func TestNewCard(t *testing.T) {
	t.Run("constructs a valid card", func(t *testing.T) {
		card, err := NewCard(int(Green), int(Seven))
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, card, Card{Green, Seven})
	})

	t.Run("rejects out of range arguments", func(t *testing.T) {
		_, err := NewCard(5, 0)
		utils.AssertErrored(t, err)

		_, err = NewCard(0, 15)
		utils.AssertErrored(t, err)

		_, err = NewCard(-1, -1)
		utils.AssertErrored(t, err)
	})
}

func TestCardEquality(t *testing.T) {
	utils.AssertEqual(t, Card{Red, Five}, Card{Red, Five})
	assert.NotEqual(t, Card{Red, Five}, Card{Red, Six})
	assert.NotEqual(t, Card{Red, Five}, Card{Blue, Five})

	// structural equality makes Card usable as a map key
	counts := map[Card]int{}
	counts[Card{Red, Five}]++
	counts[Card{Red, Five}]++
	utils.AssertEqual(t, counts[Card{Red, Five}], 2)
}

func TestParseColor(t *testing.T) {
	for i, name := range colorNames {
		color, err := ParseColor(name)
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, color, Color(i))
	}

	_, err := ParseColor("Purple")
	utils.AssertErrored(t, err)

	_, err = ParseColor("red")
	utils.AssertErrored(t, err)
}

func TestParseRank(t *testing.T) {
	for i, name := range rankNames {
		rank, err := ParseRank(name)
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, rank, Rank(i))
	}

	_, err := ParseRank("Ten")
	utils.AssertErrored(t, err)

	_, err = ParseRank("Draw Two")
	utils.AssertErrored(t, err)
}
