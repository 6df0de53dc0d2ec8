package game

import "github.com/minaorangina/kings/deck"

// CanAddToPile reports whether card may be placed on top of pile.
// Picture cards and Kings never go on top of a pile.
func CanAddToPile(pile *deck.SpecialPile, card deck.Card) bool {
	if card.Rank == deck.King || card.Rank.IsPicture() {
		return false
	}

	cards := pile.Cards
	switch pile.Special.Rank {
	case deck.King, deck.Jack:
		return card.Suit == pile.Special.Suit

	case deck.Queen:
		counts := cards.RankCounts()
		for _, n := range counts {
			if n == 1 {
				return counts[card.Rank] > 0
			}
		}
		return true

	case deck.Ace:
		if cards.ContainsRank(card.Rank) {
			return false
		}
		return cards.IsEmpty() ||
			cards.ContainsRank(card.Rank.Up()) ||
			cards.ContainsRank(card.Rank.Down())
	}

	return false
}

// Strength scores a house pile for attacks
func Strength(pile *deck.SpecialPile) int {
	n := pile.Count()
	switch pile.Special.Rank {
	case deck.Queen:
		return n * 2
	case deck.Ace:
		if pile.Cards.ContainsRank(deck.Two) {
			return n + 1
		}
		return n
	}
	return n
}
