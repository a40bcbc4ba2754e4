package deck

import (
	"testing"

	utils "github.com/phuongkuro/Uno-text-based-LAN/internal"
	"github.com/stretchr/testify/assert"
)

var fullDeckCount = 108

func cardCounts(cards []Card) map[Card]int {
	counts := map[Card]int{}
	for _, c := range cards {
		counts[c]++
	}
	return counts
}

func assertFullComposition(t *testing.T, cards []Card) {
	t.Helper()

	counts := cardCounts(cards)
	for color := Red; color <= Blue; color++ {
		utils.AssertEqual(t, counts[Card{color, Zero}], 1)
		for rank := One; rank <= DrawTwo; rank++ {
			utils.AssertEqual(t, counts[Card{color, rank}], 2)
		}
	}
	utils.AssertEqual(t, counts[Card{Black, Wild}], 4)
	utils.AssertEqual(t, counts[Card{Black, WildDrawFour}], 4)
}

func TestDeckNew(t *testing.T) {
	deckOfCards := New()

	utils.AssertEqual(t, len(deckOfCards), fullDeckCount)
	assertFullComposition(t, deckOfCards)
}

func TestDeckShuffle(t *testing.T) {
	deckOfCards := New()
	deckOfCards.Shuffle()

	t.Run("preserves the card multiset", func(t *testing.T) {
		utils.AssertEqual(t, len(deckOfCards), fullDeckCount)
		assertFullComposition(t, deckOfCards)
	})
}

func TestDeckDeal(t *testing.T) {
	t.Run("deals a full hand to each player", func(t *testing.T) {
		deckOfCards := New()
		players := []string{"Alice", "Bob", "Carol"}

		hands, short := deckOfCards.Deal(players, 7)

		assert.False(t, short)
		utils.AssertEqual(t, len(hands), 3)
		for _, name := range players {
			utils.AssertEqual(t, len(hands[name]), 7)
		}
		utils.AssertEqual(t, len(deckOfCards), fullDeckCount-21)
	})

	t.Run("deals round-robin from the top of the pile", func(t *testing.T) {
		deckOfCards := Deck{
			{Red, One}, {Red, Two}, {Red, Three}, {Red, Four},
		}
		hands, short := deckOfCards.Deal([]string{"a", "b"}, 2)

		assert.False(t, short)
		// top of the pile is the last element
		utils.AssertDeepEqual(t, hands["a"], []Card{{Red, Four}, {Red, Two}})
		utils.AssertDeepEqual(t, hands["b"], []Card{{Red, Three}, {Red, One}})
		utils.AssertEqual(t, len(deckOfCards), 0)
	})

	t.Run("reports a shortage when the pile runs out", func(t *testing.T) {
		deckOfCards := Deck{{Red, One}, {Red, Two}, {Red, Three}}
		hands, short := deckOfCards.Deal([]string{"a", "b"}, 2)

		utils.AssertTrue(t, short)
		utils.AssertEqual(t, len(hands["a"])+len(hands["b"]), 3)
		utils.AssertEqual(t, len(deckOfCards), 0)
	})
}

func TestDeckDraw(t *testing.T) {
	deckOfCards := Deck{{Blue, Nine}, {Green, Skip}}

	card, err := deckOfCards.Draw()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, card, Card{Green, Skip})

	card, err = deckOfCards.Draw()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, card, Card{Blue, Nine})

	_, err = deckOfCards.Draw()
	assert.ErrorIs(t, err, ErrEmpty)
}
