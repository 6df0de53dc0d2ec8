package game

import (
	"math/rand/v2"
	"testing"

	"github.com/minaorangina/kings/deck"
	utils "github.com/minaorangina/kings/internal"
	"github.com/stretchr/testify/require"
)

func testGame(t *testing.T, players int) *GameState {
	t.Helper()

	g, err := New(Options{Players: players, Source: rand.NewPCG(7, 11)})
	utils.AssertNoError(t, err)
	return g
}

// clearHands returns every hand to the stock
func clearHands(g *GameState) {
	for _, ps := range g.Players {
		g.Stock.AddPile(ps.Hand)
	}
}

// give moves cards from the stock into a player's hand
func give(t *testing.T, g *GameState, player int, cards ...deck.Card) {
	t.Helper()

	for _, c := range cards {
		require.True(t, g.Stock.TakeCard(c), "%s is not in the stock", c)
		g.Players[player].Hand.Add(c)
	}
}

// openHouse builds a house pile for player out of stock cards
func openHouse(t *testing.T, g *GameState, player int, slot HousePile, special deck.Card, cards ...deck.Card) {
	t.Helper()

	require.True(t, g.Stock.TakeCard(special), "%s is not in the stock", special)
	pile := deck.NewSpecialPile(special)
	for _, c := range cards {
		require.True(t, g.Stock.TakeCard(c), "%s is not in the stock", c)
		pile.Cards.Add(c)
	}
	g.Players[player].House[slot] = pile
}

func card(rank deck.Rank, suit deck.Suit) deck.Card {
	return deck.NewCard(rank, suit)
}
