package game

import "github.com/minaorangina/kings/deck"

// PlayerState holds everything one player owns
type PlayerState struct {
	Suit  deck.Suit
	King  *deck.SpecialPile
	House [3]*deck.SpecialPile
	Hand  *deck.Pile
}

// NewPlayerState seats a player with their own King pile and an empty hand
func NewPlayerState(suit deck.Suit) *PlayerState {
	return &PlayerState{
		Suit: suit,
		King: deck.NewSpecialPile(deck.NewCard(deck.King, suit)),
		Hand: deck.NewPile(),
	}
}

// Pile returns the addressed pile, or nil for an empty house slot
func (ps *PlayerState) Pile(p PlayerPile) *deck.SpecialPile {
	if p.IsKing() {
		return ps.King
	}
	return ps.House[p.House()]
}

// FirstHousePile finds the first occupied house slot
func (ps *PlayerState) FirstHousePile() (HousePile, bool) {
	for _, h := range HousePiles {
		if ps.House[h] != nil {
			return h, true
		}
	}
	return 0, false
}

func (ps *PlayerState) Swap(a, b HousePile) {
	ps.House[a], ps.House[b] = ps.House[b], ps.House[a]
}

func (ps *PlayerState) CardCount() int {
	total := 1 + ps.King.Count() + ps.Hand.Count()
	for _, pile := range ps.House {
		if pile != nil {
			total += 1 + pile.Count()
		}
	}
	return total
}

func (ps *PlayerState) Clone() *PlayerState {
	c := &PlayerState{
		Suit: ps.Suit,
		King: ps.King.Clone(),
		Hand: ps.Hand.Clone(),
	}
	for i, pile := range ps.House {
		c.House[i] = pile.Clone()
	}
	return c
}
