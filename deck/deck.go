package deck

import "math/rand/v2"

// Deck represents a deck of cards
type Deck []Card

// New creates a deck of cards without the Kings.
// Kings seed the players' King piles and never circulate.
// blankCopies adds that many blank cards of every other rank.
func New(blankCopies int) Deck {
	cards := Deck{}
	for _, rank := range Ranks {
		if rank == King {
			continue
		}
		for _, suit := range Suits {
			cards = append(cards, NewCard(rank, suit))
		}
		for i := 0; i < blankCopies; i++ {
			cards = append(cards, NewCard(rank, Blank))
		}
	}
	return cards
}

// Shuffle shuffles the deck of cards
func (d Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Pile turns the deck into a pile. The last card is on top.
func (d Deck) Pile() *Pile {
	return NewPile(d...)
}
